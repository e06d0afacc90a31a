package specs

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pubky-garden/pubky-playground/crock32"
)

// MaxTagLabelLength is the character limit for tag labels.
const MaxTagLabelLength = 20

// Tag attaches a label to a subject URI, stored under
// pubky:///pub/pubky.app/tags/:id, where the identifier is
// Crockford-base32(blake3("{uri}:{label}")[:16]). The same user tagging
// the same subject with the same label twice derives the same identifier,
// which is the de-duplication contract.
type Tag struct {
	URI       string `json:"uri"`
	Label     string `json:"label"`
	CreatedAt int64  `json:"created_at"`
}

// NewTag stamps created_at and sanitizes the new tag. It fails when the
// subject URI cannot be normalized, since the URI is load-bearing for
// identity.
func NewTag(uri, label string) (*Tag, error) {
	tag := &Tag{
		URI:       uri,
		Label:     label,
		CreatedAt: time.Now().UTC().UnixMilli(),
	}
	if err := tag.Sanitize(); err != nil {
		return nil, err
	}
	return tag, nil
}

// RecordKind implements Record.
func (t *Tag) RecordKind() Kind { return KindTag }

// idData assembles the canonical string the identifier is derived from.
// Fields must already be sanitized.
func (t *Tag) idData() string {
	return t.URI + ":" + t.Label
}

// ID derives the content-hashed identifier from the sanitized subject URI
// and label. created_at deliberately does not participate.
func (t *Tag) ID() string {
	return HashID(t.idData())
}

// Path returns the canonical resource path for the tag.
func (t *Tag) Path() string {
	path, _ := RecordPath(KindTag, t.ID())
	return path
}

// Sanitize implements Record. The label is trimmed, lowercased and
// truncated; the subject URI is mandatory, so a URI that cannot be
// normalized is a hard failure rather than a discard.
func (t *Tag) Sanitize() error {
	label := strings.ToLower(strings.TrimSpace(t.Label))
	// Truncation can land on whitespace; trim again so sanitize is a
	// fixed point.
	t.Label = strings.TrimSpace(truncateChars(label, MaxTagLabelLength))

	uri, ok := normalizeURI(t.URI)
	if !ok {
		return MandatoryFieldError{Field: "uri", Reason: "not an absolute URI"}
	}
	t.URI = uri

	return nil
}

// Validate implements Record. The identifier recomputed from sanitized
// content must match the claim (case-insensitively, canonicalized);
// disagreement signals tampering or a client bug and is never corrected.
func (t *Tag) Validate(id string) error {
	derived := t.ID()
	if crock32.Canonicalize(id) != derived {
		return IdentifierMismatchError{Claimed: id, Derived: derived}
	}

	if count := utf8.RuneCountInString(t.Label); count > MaxTagLabelLength {
		return LabelTooLongError{Limit: MaxTagLabelLength, Count: count}
	}

	return nil
}
