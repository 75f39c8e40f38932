// Package mcqformat normalizes and parses the plain-text MCQ format emitted
// by the LLM:
//
//	Q1. Question text
//	A) Option one
//	B) Option two
//	C) Option three
//	D) Option four
//	Answer: B - Brief explanation
package mcqformat

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/redfire-io/pcb-tutor/internal/model"
)

var (
	questionRe = regexp.MustCompile(`^Q(\d+)\.\s*(.*)$`)
	optionRe   = regexp.MustCompile(`^([A-D])\)\s*(.*)$`)
	answerRe   = regexp.MustCompile(`^Answer:\s*([A-D])?\s*(?:[-–:]\s*(.*))?$`)
)

// CleanOutput strips chatter around the question lines. Only lines that look
// like a question, an option, an answer, or a blank separator survive.
// "Correct Answer:" is normalized to "Answer:".
func CleanOutput(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" ||
			questionRe.MatchString(line) ||
			strings.HasPrefix(line, "A)") ||
			strings.HasPrefix(line, "B)") ||
			strings.HasPrefix(line, "C)") ||
			strings.HasPrefix(line, "D)") ||
			strings.HasPrefix(line, "Answer:") ||
			strings.HasPrefix(line, "Correct Answer:") {

			if strings.HasPrefix(line, "Correct Answer:") {
				line = strings.Replace(line, "Correct Answer:", "Answer:", 1)
			}

			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}

// Parse converts cleaned MCQ text into structured items. Lines that do not
// fit the format are skipped; a question with no options or answer is still
// returned so callers can surface partial output.
func Parse(text string) []model.MCQItem {
	var items []model.MCQItem
	var current *model.MCQItem

	flush := func() {
		if current != nil {
			items = append(items, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := questionRe.FindStringSubmatch(line); m != nil {
			flush()
			num, _ := strconv.Atoi(m[1])
			current = &model.MCQItem{
				Number:   num,
				Question: m[2],
				Options:  make(map[string]string),
			}
			continue
		}

		if current == nil {
			continue
		}

		if m := optionRe.FindStringSubmatch(line); m != nil {
			current.Options[m[1]] = m[2]
			continue
		}

		if m := answerRe.FindStringSubmatch(line); m != nil {
			current.Answer = m[1]
			current.Explanation = strings.TrimSpace(m[2])
			continue
		}
	}

	flush()
	return items
}
