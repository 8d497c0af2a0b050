package bencode

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedInteger      = errors.New("malformed integer")
	ErrMalformedLength       = errors.New("malformed string length")
	ErrTruncatedString       = errors.New("string length exceeds remaining data")
	ErrUnterminatedContainer = errors.New("unterminated list or dictionary")
	ErrMissingDelimiter      = errors.New("missing ':' after string length")
	ErrInvalidToken          = errors.New("unrecognised start token")
	ErrInvalidKey            = errors.New("dictionary keys should be strings")
	ErrMissingValue          = errors.New("dictionary entry is missing a value")
	ErrTrailingData          = errors.New("trailing data after top-level value")
	ErrTooDeep               = errors.New("nesting exceeds maximum depth")

	ErrUnsupportedType  = errors.New("unsupported type")
	ErrNonIntegerNumber = errors.New("non-integer number")

	ErrFieldMissing = errors.New("field missing")
	ErrWrongType    = errors.New("wrong type")
)

// SyntaxError is returned for any decode failure, pointing at the byte offset where it was detected.
type SyntaxError struct {
	Err    error
	Offset int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bencode: %v at offset %d", e.Err, e.Offset)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError is returned by Marshal for Go values with no bencode mapping.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return "bencode: unsupported type: " + e.Type
}

func (e *UnsupportedTypeError) Unwrap() error {
	return ErrUnsupportedType
}
