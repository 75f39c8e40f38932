// Package model defines the data models for the MCQ tutor.
package model

import "strings"

// Subject identifies one of the Class 12 PCB textbooks.
type Subject string

// Supported subjects.
const (
	SubjectBiology   Subject = "biology"
	SubjectChemistry Subject = "chemistry"
	SubjectPhysics   Subject = "physics"
)

// Subjects lists all supported subjects in display order.
var Subjects = []Subject{SubjectBiology, SubjectChemistry, SubjectPhysics}

// ParseSubject normalizes raw input to a Subject. ok is false when the
// input names no supported subject.
func ParseSubject(raw string) (Subject, bool) {
	s := Subject(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SubjectBiology, SubjectChemistry, SubjectPhysics:
		return s, true
	}
	return "", false
}

// Title returns the subject name with an uppercase first letter, as used
// in prompts and user-facing messages.
func (s Subject) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[0])) + string(s[1:])
}

// String implements fmt.Stringer.
func (s Subject) String() string {
	return string(s)
}
