package domain

import "errors"

var (
	// ErrStudentIDRequired is returned when a request omits the student id.
	ErrStudentIDRequired = errors.New("student ID is required")
	// ErrAnswersRequired is returned when a submission carries no answers.
	ErrAnswersRequired = errors.New("answers are required")
	// ErrDuplicateSubmission enforces the one-submission-per-student rule.
	ErrDuplicateSubmission = errors.New("quiz already submitted")
	// ErrQuestionTextRequired is returned when a new question has no text.
	ErrQuestionTextRequired = errors.New("question text is required")
	// ErrOptionsRequired is returned when a new question has no options.
	ErrOptionsRequired = errors.New("question options are required")
	// ErrInvalidOptionKey is returned when an option key falls outside a..d.
	ErrInvalidOptionKey = errors.New("option key must be one of a, b, c, d")
	// ErrCorrectOptionMismatch is returned when the correct option is not
	// among the provided options.
	ErrCorrectOptionMismatch = errors.New("correct option must match one of the provided options")
)
