package lesson

import "errors"

var (
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrInvalidVideoURL = errors.New("video link must point to YouTube")
)
