package event

import "fmt"

type UnsupportedEventTypeError struct {
	kind   string
	action string
}

func NewUnsupportedEventTypeError(kind, action string) *UnsupportedEventTypeError {
	return &UnsupportedEventTypeError{kind: kind, action: action}
}

func (e *UnsupportedEventTypeError) Error() string {
	return fmt.Sprintf("unsupported docker event: type=%s action=%s", e.kind, e.action)
}
