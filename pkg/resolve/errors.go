package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a ValidationError.
type Kind int

// Validation error kinds.
const (
	// KindUnknownKey is reported for keys outside the schema or absent from defaults.
	KindUnknownKey Kind = iota + 1
	// KindMissingField is reported for required keys that are absent or blank after merge.
	KindMissingField
	// KindTypeMismatch is reported for values that cannot be coerced to the field type.
	KindTypeMismatch
	// KindConstraintViolation is reported for values that break a cross-field or policy rule.
	KindConstraintViolation
)

// String returns the name of the kind as used in CLI output.
func (k Kind) String() string {
	switch k {
	case KindUnknownKey:
		return "UnknownKey"
	case KindMissingField:
		return "MissingField"
	case KindTypeMismatch:
		return "TypeMismatch"
	case KindConstraintViolation:
		return "ConstraintViolation"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is. A *ValidationError matches the sentinel of its Kind.
var (
	ErrUnknownKey          = errors.New("unknown key")
	ErrMissingField        = errors.New("missing field")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrConstraintViolation = errors.New("constraint violation")
)

// ValidationError is returned when resolution fails. It is always fatal to the
// build invocation.
type ValidationError struct {
	Kind   Kind
	Key    string
	Value  any    // offending raw value, nil when the key is missing
	Source string // layer that supplied the value, empty when unknown
	Reason string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.sentinel().Error())
	if e.Key != "" {
		fmt.Fprintf(&b, " %q", e.Key)
	}
	if e.Source != "" {
		fmt.Fprintf(&b, " (from %s)", e.Source)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is reports whether target is the sentinel for e.Kind.
func (e *ValidationError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ValidationError) sentinel() error {
	switch e.Kind {
	case KindUnknownKey:
		return ErrUnknownKey
	case KindMissingField:
		return ErrMissingField
	case KindTypeMismatch:
		return ErrTypeMismatch
	case KindConstraintViolation:
		return ErrConstraintViolation
	default:
		return errors.New("validation error")
	}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or zero if err is not a ValidationError.
func KindOf(err error) Kind {
	if ve, ok := AsValidationError(err); ok {
		return ve.Kind
	}
	return 0
}

func unknownKey(key, source, reason string) *ValidationError {
	return &ValidationError{Kind: KindUnknownKey, Key: key, Source: source, Reason: reason}
}

func missingField(key string) *ValidationError {
	return &ValidationError{Kind: KindMissingField, Key: key, Reason: "required value is not set"}
}

func typeMismatch(key string, value any, source, reason string) *ValidationError {
	return &ValidationError{Kind: KindTypeMismatch, Key: key, Value: value, Source: source, Reason: reason}
}

func constraintViolation(key string, value any, source, reason string) *ValidationError {
	return &ValidationError{Kind: KindConstraintViolation, Key: key, Value: value, Source: source, Reason: reason}
}
