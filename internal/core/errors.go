package core

import "fmt"

// ErrNilSource is returned when a Policy is constructed (or serialized)
// without source text.
var ErrNilSource = fmt.Errorf("failed to construct policy from empty source")

// ParseError is a syntactic or semantic rejection of policy-language text.
// It is never retried internally; the message names the defect.
type ParseError struct {
	Message string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Message
}

// ParseErrorf builds a ParseError with a formatted message.
func ParseErrorf(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

// LinkError reports a slot/filler mismatch or a post-substitution
// validation failure while linking a template.
type LinkError struct {
	Message string
}

func (e *LinkError) Error() string {
	return "link error: " + e.Message
}

// LinkErrorf builds a LinkError with a formatted message.
func LinkErrorf(format string, args ...any) *LinkError {
	return &LinkError{Message: fmt.Sprintf(format, args...)}
}

// SerializationError reports an attempt to serialize a policy that is not
// a fully-resolved static policy.
type SerializationError struct {
	Message string
}

func (e *SerializationError) Error() string {
	return "serialization error: " + e.Message
}

// SerializationErrorf builds a SerializationError with a formatted message.
func SerializationErrorf(format string, args ...any) *SerializationError {
	return &SerializationError{Message: fmt.Sprintf(format, args...)}
}
