package specs

import (
	"encoding/json"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Record is the capability set every record kind implements.
type Record interface {
	// RecordKind names the kind in the registry.
	RecordKind() Kind

	// Sanitize normalizes untrusted field values in place. Malformed
	// optional fields degrade to absent; it returns an error only when a
	// mandatory field cannot be normalized into something parseable.
	// Sanitizing an already-sanitized record is a no-op.
	Sanitize() error

	// Validate checks the claimed identifier against the sanitized
	// content and re-runs the kind's semantic checks. It must only be
	// called after Sanitize.
	Validate(id string) error
}

// ParseRecord is the validation entry point consumed by the surrounding
// storage and transport layer: it deserializes blob into the record shape
// of the target kind, sanitizes it, recomputes the canonical identifier
// and compares it against the claim, then re-runs the kind's semantic
// checks. The identifier is recomputed strictly after sanitize, because
// identifiers are defined over canonical content.
func ParseRecord(kind Kind, blob []byte, id string) (Record, error) {
	rec, err := NewRecord(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(blob, rec); err != nil {
		return nil, DeserializationError{Err: err}
	}
	if err := rec.Sanitize(); err != nil {
		return nil, err
	}
	if err := rec.Validate(id); err != nil {
		return nil, err
	}
	return rec, nil
}

// truncateChars cuts s to at most max characters. Limits are counted in
// Unicode scalar values, not bytes.
func truncateChars(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// normalizeURI parses s as an absolute URI and returns its normalized
// textual form. The second return is false when s is not an absolute URI.
func normalizeURI(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", false
	}
	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() {
		return "", false
	}
	return u.String(), true
}
