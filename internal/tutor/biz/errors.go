package biz

import "errors"

var (
	// ErrInvalidSubject indicates the requested subject is not supported.
	ErrInvalidSubject = errors.New("invalid subject")

	// ErrSubjectMismatch indicates the topic does not belong to the
	// requested subject.
	ErrSubjectMismatch = errors.New("topic does not belong to subject")

	// ErrNoContent indicates the indexed material has no relevant content
	// for the topic.
	ErrNoContent = errors.New("no relevant content found for topic")

	// ErrDuplicateDataset indicates the source content was already indexed
	// for the subject.
	ErrDuplicateDataset = errors.New("dataset already indexed")
)
