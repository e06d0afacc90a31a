package specs

import "fmt"

// DeserializationError reports a byte blob that does not decode into the
// record shape of the target kind.
type DeserializationError struct {
	Err error
}

func (e DeserializationError) Error() string {
	if e.Err == nil {
		return "malformed record"
	}
	return fmt.Sprintf("malformed record: %v", e.Err)
}

func (e DeserializationError) Unwrap() error { return e.Err }

// Is enables errors.Is matching on DeserializationError.
func (e DeserializationError) Is(target error) bool {
	_, ok := target.(DeserializationError)
	if ok {
		return true
	}
	_, ok = target.(*DeserializationError)
	return ok
}

// ErrDeserialization is the sentinel error for malformed record bytes.
var ErrDeserialization = DeserializationError{}

// MandatoryFieldError reports a required field that cannot be sanitized
// into a well-formed value.
type MandatoryFieldError struct {
	Field  string
	Reason string
}

func (e MandatoryFieldError) Error() string {
	if e.Field == "" {
		return "mandatory field invalid"
	}
	if e.Reason == "" {
		return fmt.Sprintf("mandatory field %q invalid", e.Field)
	}
	return fmt.Sprintf("mandatory field %q invalid: %s", e.Field, e.Reason)
}

// Is enables errors.Is matching on MandatoryFieldError.
func (e MandatoryFieldError) Is(target error) bool {
	_, ok := target.(MandatoryFieldError)
	if ok {
		return true
	}
	_, ok = target.(*MandatoryFieldError)
	return ok
}

// ErrMandatoryField is the sentinel error for unsanitizable required fields.
var ErrMandatoryField = MandatoryFieldError{}

// IdentifierMismatchError reports a claimed identifier that disagrees with
// the identifier recomputed from sanitized content. It is an integrity
// failure and is never silently corrected.
type IdentifierMismatchError struct {
	Claimed string
	Derived string
}

func (e IdentifierMismatchError) Error() string {
	if e.Claimed == "" && e.Derived == "" {
		return "identifier mismatch"
	}
	return fmt.Sprintf("identifier mismatch: claimed %s, derived %s", e.Claimed, e.Derived)
}

// Is enables errors.Is matching on IdentifierMismatchError.
func (e IdentifierMismatchError) Is(target error) bool {
	_, ok := target.(IdentifierMismatchError)
	if ok {
		return true
	}
	_, ok = target.(*IdentifierMismatchError)
	return ok
}

// ErrIdentifierMismatch is the sentinel error for identifier tampering.
var ErrIdentifierMismatch = IdentifierMismatchError{}

// ContentTooLongError reports content that still exceeds the kind's limit
// after sanitization. Reaching it means sanitize and validate have drifted.
type ContentTooLongError struct {
	Limit int
	Count int
}

func (e ContentTooLongError) Error() string {
	return fmt.Sprintf("content exceeds maximum length: %d > %d", e.Count, e.Limit)
}

// Is enables errors.Is matching on ContentTooLongError.
func (e ContentTooLongError) Is(target error) bool {
	_, ok := target.(ContentTooLongError)
	if ok {
		return true
	}
	_, ok = target.(*ContentTooLongError)
	return ok
}

// ErrContentTooLong is the sentinel error for over-long content.
var ErrContentTooLong = ContentTooLongError{}

// LabelTooLongError reports a label that still exceeds the limit after
// sanitization.
type LabelTooLongError struct {
	Limit int
	Count int
}

func (e LabelTooLongError) Error() string {
	return fmt.Sprintf("label exceeds maximum length: %d > %d", e.Count, e.Limit)
}

// Is enables errors.Is matching on LabelTooLongError.
func (e LabelTooLongError) Is(target error) bool {
	_, ok := target.(LabelTooLongError)
	if ok {
		return true
	}
	_, ok = target.(*LabelTooLongError)
	return ok
}

// ErrLabelTooLong is the sentinel error for over-long labels.
var ErrLabelTooLong = LabelTooLongError{}

// UnknownKindError reports a record kind outside the registry.
type UnknownKindError struct {
	Kind string
}

func (e UnknownKindError) Error() string {
	return fmt.Sprintf("unknown record kind: %q", e.Kind)
}

// Is enables errors.Is matching on UnknownKindError.
func (e UnknownKindError) Is(target error) bool {
	_, ok := target.(UnknownKindError)
	if ok {
		return true
	}
	_, ok = target.(*UnknownKindError)
	return ok
}

// ErrUnknownKind is the sentinel error for unregistered record kinds.
var ErrUnknownKind = UnknownKindError{}
