package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись с указанным ID отсутствует в хранилище.
	ErrNotFound = errors.New("record not found")

	// ErrValidation используется, когда тело запроса не соответствует схеме.
	ErrValidation = errors.New("validation failed")
)
