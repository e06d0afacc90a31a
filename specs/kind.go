// Package specs implements the pubky.app record family: canonical
// identifier derivation, sanitization and validation for the typed records
// a homeserver accepts under /pub/pubky.app/. Records are untrusted input;
// every record passes through sanitize before its identifier is derived or
// checked, and a record whose claimed identifier cannot be reproduced from
// its sanitized content is rejected.
package specs

// Kind names a record kind in the closed registry.
type Kind string

const (
	KindPost Kind = "post"
	KindTag  Kind = "tag"
)

type kindInfo struct {
	plural           string
	idSize           int // decoded identifier width in bytes
	contentAddressed bool
	make             func() Record
}

var kinds = map[Kind]kindInfo{
	KindPost: {plural: "posts", idSize: timestampIDSize, make: func() Record { return &Post{} }},
	KindTag:  {plural: "tags", idSize: hashIDSize, contentAddressed: true, make: func() Record { return &Tag{} }},
}

// Valid reports whether k is a registered record kind.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Plural returns the path segment for the kind, e.g. "posts".
func (k Kind) Plural() string {
	return kinds[k].plural
}

// ContentAddressed reports whether the kind derives identifiers from
// content. Records of such kinds de-duplicate: re-submitting identical
// content is an idempotent write.
func (k Kind) ContentAddressed() bool {
	return kinds[k].contentAddressed
}

// KindFromPlural resolves a path segment back to its record kind.
func KindFromPlural(plural string) (Kind, bool) {
	for k, info := range kinds {
		if info.plural == plural {
			return k, true
		}
	}
	return "", false
}

// NewRecord returns an empty record of the given kind, ready to be
// deserialized into.
func NewRecord(kind Kind) (Record, error) {
	info, ok := kinds[kind]
	if !ok {
		return nil, UnknownKindError{Kind: string(kind)}
	}
	return info.make(), nil
}
