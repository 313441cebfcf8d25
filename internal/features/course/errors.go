package course

import "errors"

var (
	ErrCourseNotFound = errors.New("course not found")
	ErrForbidden      = errors.New("not allowed to manage this course")
	ErrInvalidPrice   = errors.New("price must not be negative")
)
