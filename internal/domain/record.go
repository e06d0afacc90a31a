package domain

import (
	"encoding/json"
	"time"
)

// Record is a stored, already-validated record together with its
// addressing metadata. Content is the canonical JSON of the sanitized
// record; the claimed identifier has been verified against it before the
// record ever reaches storage.
type Record struct {
	Owner string `json:"owner"`
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	// URI is the owner-qualified locator, e.g.
	// pubky://<owner>/pub/pubky.app/posts/<id>.
	URI     string          `json:"uri"`
	Content json.RawMessage `json:"content"`
	CDate   time.Time       `json:"cdate"`
}
