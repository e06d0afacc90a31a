package specs

import (
	"fmt"

	"github.com/pubky-garden/pubky-playground/crock32"
)

const (
	// Scheme is the canonical URI scheme for record paths.
	Scheme = "pubky"
	// Namespace is the application namespace under /pub/.
	Namespace = "pubky.app"
)

// RecordPath composes the canonical resource path for a record kind and
// identifier, e.g. pubky:///pub/pubky.app/posts/00321FCW75ZFY. Paths are
// never stored, always derived. It fails only when the identifier does
// not decode at the kind's width.
func RecordPath(kind Kind, id string) (string, error) {
	info, ok := kinds[kind]
	if !ok {
		return "", UnknownKindError{Kind: string(kind)}
	}
	if _, err := crock32.DecodeExact(id, info.idSize); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:///pub/%s/%s/%s", Scheme, Namespace, info.plural, crock32.Canonicalize(id)), nil
}
