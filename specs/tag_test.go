package specs

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTagID(t *testing.T) {
	tag := Tag{
		URI:       "https://example.com/post/1",
		Label:     "cool",
		CreatedAt: 1627849723000,
	}

	id := tag.ID()
	if len(id) != HashIDLength {
		t.Fatalf("expected %d-char tag id, got %q", HashIDLength, id)
	}
	if err := CheckTimestampID(id); err == nil {
		t.Fatalf("hash id must not pass as timestamp id")
	}
}

func TestTagIDDeterministic(t *testing.T) {
	tag := Tag{URI: "https://example.com/post/1", Label: "cool", CreatedAt: 1627849723000}
	if tag.ID() != tag.ID() {
		t.Fatalf("deriving the identifier twice yielded different text")
	}
}

func TestTagContentAddressing(t *testing.T) {
	a := Tag{URI: "https://example.com/post/1", Label: "cool", CreatedAt: 1627849723000}
	b := Tag{URI: "https://example.com/post/1", Label: "cool", CreatedAt: 9999999999999}

	if a.ID() != b.ID() {
		t.Fatalf("identical subject and label must derive the same identifier regardless of created_at")
	}

	c := Tag{URI: "https://example.com/post/2", Label: "cool"}
	if a.ID() == c.ID() {
		t.Fatalf("different subjects must not collide")
	}
}

func TestNewTag(t *testing.T) {
	uri := "https://example.com/post/1"
	tag, err := NewTag(uri, "interesting")
	if err != nil {
		t.Fatalf("NewTag failed: %v", err)
	}

	if tag.URI != uri {
		t.Fatalf("expected uri %s got %s", uri, tag.URI)
	}
	if tag.Label != "interesting" {
		t.Fatalf("expected label interesting got %s", tag.Label)
	}

	now := time.Now().UTC().UnixMilli()
	if tag.CreatedAt > now || tag.CreatedAt < now-1000 {
		t.Fatalf("created_at not recent: %d", tag.CreatedAt)
	}
}

func TestNewTagInvalidURI(t *testing.T) {
	_, err := NewTag("invalid_uri", "cool")
	if !errors.Is(err, ErrMandatoryField) {
		t.Fatalf("expected ErrMandatoryField, got %v", err)
	}
}

func TestTagPath(t *testing.T) {
	tag := Tag{URI: "https://example.com/post/1", Label: "cool", CreatedAt: 1627849723000}

	expected := "pubky:///pub/pubky.app/tags/" + tag.ID()
	if got := tag.Path(); got != expected {
		t.Fatalf("expected path %s got %s", expected, got)
	}
}

func TestTagSanitize(t *testing.T) {
	tag := Tag{
		URI:       "https://example.com/post/1",
		Label:     "   CoOl  ",
		CreatedAt: 1627849723000,
	}

	if err := tag.Sanitize(); err != nil {
		t.Fatalf("sanitize failed: %v", err)
	}
	if tag.Label != "cool" {
		t.Fatalf("expected label cool got %q", tag.Label)
	}
}

func TestTagSanitizeIdempotent(t *testing.T) {
	tag := Tag{URI: "https://example.com/post/1", Label: "  CoOl Tag  ", CreatedAt: 1627849723000}
	if err := tag.Sanitize(); err != nil {
		t.Fatalf("sanitize failed: %v", err)
	}
	once := tag

	if err := tag.Sanitize(); err != nil {
		t.Fatalf("second sanitize failed: %v", err)
	}
	if tag != once {
		t.Fatalf("sanitize is not idempotent: %+v != %+v", tag, once)
	}
}

func TestTagSanitizeIdempotentAtTruncationBoundary(t *testing.T) {
	// Truncating at the limit can leave the label ending in whitespace; a
	// second sanitize must not shrink it further.
	tag := Tag{
		URI:   "https://example.com/post/1",
		Label: strings.Repeat("a", MaxTagLabelLength-1) + " b",
	}
	if err := tag.Sanitize(); err != nil {
		t.Fatalf("sanitize failed: %v", err)
	}
	once := tag
	if strings.HasSuffix(once.Label, " ") {
		t.Fatalf("sanitized label ends in whitespace")
	}

	if err := tag.Sanitize(); err != nil {
		t.Fatalf("second sanitize failed: %v", err)
	}
	if tag != once {
		t.Fatalf("sanitize is not idempotent: %q then %q", once.Label, tag.Label)
	}
}

func TestTagSanitizeTruncatesLabel(t *testing.T) {
	tag := Tag{URI: "https://example.com/post/1", Label: strings.Repeat("a", MaxTagLabelLength+1)}
	if err := tag.Sanitize(); err != nil {
		t.Fatalf("sanitize failed: %v", err)
	}
	if len(tag.Label) != MaxTagLabelLength {
		t.Fatalf("expected label truncated to %d chars, got %d", MaxTagLabelLength, len(tag.Label))
	}
	// The post-sanitize semantic re-check passes.
	if err := tag.Validate(tag.ID()); err != nil {
		t.Fatalf("validate after sanitize failed: %v", err)
	}
}

func TestTagValidate(t *testing.T) {
	tag := Tag{URI: "https://example.com/post/1", Label: "cool", CreatedAt: 1627849723000}

	if err := tag.Validate(tag.ID()); err != nil {
		t.Fatalf("validate with derived id failed: %v", err)
	}

	// Case-insensitive on the claimed identifier.
	if err := tag.Validate(strings.ToLower(tag.ID())); err != nil {
		t.Fatalf("validate must accept lowercase claimed id: %v", err)
	}
}

func TestTagValidateLabelTooLong(t *testing.T) {
	tag := Tag{
		URI:       "https://example.com/post/1",
		Label:     strings.Repeat("a", MaxTagLabelLength+1),
		CreatedAt: 1627849723000,
	}

	err := tag.Validate(tag.ID())
	if !errors.Is(err, ErrLabelTooLong) {
		t.Fatalf("expected ErrLabelTooLong, got %v", err)
	}
}

func TestTagValidateMismatch(t *testing.T) {
	tag := Tag{URI: "https://example.com/post/1", Label: "cool", CreatedAt: 1627849723000}

	err := tag.Validate("INVALIDID")
	if !errors.Is(err, ErrIdentifierMismatch) {
		t.Fatalf("expected ErrIdentifierMismatch, got %v", err)
	}
}

func TestParseTag(t *testing.T) {
	blob := []byte(`{
		"uri": "pubky://user_pubky_id/pub/pubky.app/v1/profile.json",
		"label": "Cool Tag",
		"created_at": 1627849723000
	}`)

	// The claimed identifier is derived from sanitized content.
	sanitized, err := NewTag("pubky://user_pubky_id/pub/pubky.app/v1/profile.json", "Cool Tag")
	if err != nil {
		t.Fatalf("NewTag failed: %v", err)
	}
	id := sanitized.ID()

	rec, err := ParseRecord(KindTag, blob, id)
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}

	tag, ok := rec.(*Tag)
	if !ok {
		t.Fatalf("expected *Tag, got %T", rec)
	}
	if tag.URI != "pubky://user_pubky_id/pub/pubky.app/v1/profile.json" {
		t.Fatalf("unexpected uri: %s", tag.URI)
	}
	if tag.Label != "cool tag" {
		t.Fatalf("expected sanitized label, got %q", tag.Label)
	}
}

func TestParseTagInvalidURI(t *testing.T) {
	blob := []byte(`{
		"uri": "invalid_uri",
		"label": "Cool Tag",
		"created_at": 1627849723000
	}`)

	_, err := ParseRecord(KindTag, blob, "SOMEID")
	if !errors.Is(err, ErrMandatoryField) {
		t.Fatalf("expected ErrMandatoryField, got %v", err)
	}
}

func TestParseTagTampered(t *testing.T) {
	blob := []byte(`{"uri": "https://example.com/post/1", "label": "cool", "created_at": 1}`)

	other := Tag{URI: "https://example.com/post/1", Label: "warm"}
	_, err := ParseRecord(KindTag, blob, other.ID())
	if !errors.Is(err, ErrIdentifierMismatch) {
		t.Fatalf("expected ErrIdentifierMismatch, got %v", err)
	}
}

func TestParseTagMalformed(t *testing.T) {
	_, err := ParseRecord(KindTag, []byte(`{"uri": 42}`), "SOMEID")
	if !errors.Is(err, ErrDeserialization) {
		t.Fatalf("expected ErrDeserialization, got %v", err)
	}
}
