package semantic

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are an expert at extracting exam questions from educational documents. You return only valid JSON with no surrounding commentary.`

// buildUserPrompt renders the extraction instruction for one page of text.
// The model must return a JSON array of question objects; an empty array is a
// valid answer for pages with no questions.
func buildUserPrompt(pageText, subjectName string) string {
	var b strings.Builder

	b.WriteString("Extract every exam question from the page text below.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Return ONLY a JSON array of objects, nothing else. Return [] if the page has no questions.\n")
	b.WriteString("- Preserve all mathematical and scientific notation exactly as written (exponents, fractions, chemical formulas, units).\n")
	b.WriteString("- Each object may contain these fields:\n")
	b.WriteString("  question (required), lesson_title, question_type, question_difficulty,\n")
	b.WriteString("  option1, option2, option3, option4, option5, option6,\n")
	b.WriteString("  answer_steps, correct_answer\n")
	b.WriteString("- question_type must be one of: Descriptive, Multiple Choice, True/False, Fill in the blank, Short Answer, Comprehension.\n")
	b.WriteString("- question_difficulty must be one of: Easy, Medium, Hard.\n")
	b.WriteString("- For Multiple Choice questions put each choice in option1 through option6, in the order printed.\n")
	b.WriteString("- For Comprehension questions put the passage in option1 and the question itself in question.\n")
	b.WriteString("- For True/False questions set option1 to \"True\" and option2 to \"False\".\n")
	b.WriteString("- Include answer_steps and correct_answer only when the page actually shows them.\n")
	b.WriteString("- Do not invent questions, answers, or difficulty labels that are not supported by the text.\n\n")
	fmt.Fprintf(&b, "Subject: %s\n\n", subjectName)
	b.WriteString("Page text:\n")
	b.WriteString(pageText)

	return b.String()
}
