package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a single validation failure
type Kind int

const (
	MissingField Kind = iota + 1
	TypeMismatch
	UnknownReference
	OutOfRange
	Structural
	VersionIncompatible
)

// Sentinels matched by errors.Is against a FieldError or a ValidationError
var (
	ErrMissingField        = errors.New("missing field")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrUnknownReference    = errors.New("unknown reference")
	ErrOutOfRange          = errors.New("out of range")
	ErrStructural          = errors.New("structural error")
	ErrVersionIncompatible = errors.New("incompatible version")
)

func (k Kind) sentinel() error {
	switch k {
	case MissingField:
		return ErrMissingField
	case TypeMismatch:
		return ErrTypeMismatch
	case UnknownReference:
		return ErrUnknownReference
	case OutOfRange:
		return ErrOutOfRange
	case Structural:
		return ErrStructural
	case VersionIncompatible:
		return ErrVersionIncompatible
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(strings.ReplaceAll(k.String(), " ", "_")), nil
}

// FieldError is one violation located by a JSON pointer into the document
type FieldError struct {
	Kind   Kind   `json:"kind" yaml:"kind"`
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Reason)
}

func (e *FieldError) Unwrap() error {
	return e.Kind.sentinel()
}

// ValidationError aggregates every violation found in the failing phase
type ValidationError struct {
	Errors []*FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "campaign validation failed: " + e.Errors[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "campaign validation failed with %d errors:", len(e.Errors))
	for _, fe := range e.Errors {
		sb.WriteString("\n  - ")
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, fe := range e.Errors {
		errs[i] = fe
	}
	return errs
}

// Has reports whether a violation of kind k was recorded at path
func (e *ValidationError) Has(k Kind, path string) bool {
	for _, fe := range e.Errors {
		if fe.Kind == k && fe.Path == path {
			return true
		}
	}
	return false
}

// collector accumulates the violations of one phase
type collector struct {
	errs []*FieldError
}

func (c *collector) add(k Kind, path, format string, args ...interface{}) {
	c.errs = append(c.errs, &FieldError{Kind: k, Path: path, Reason: fmt.Sprintf(format, args...)})
}

func (c *collector) failed() bool {
	return len(c.errs) > 0
}
