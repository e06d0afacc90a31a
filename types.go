package pubky

import (
	"time"
)

// WellKnownPubky is the discovery document a homeserver serves under
// /.well-known/pubky.
type WellKnownPubky struct {
	Version   string            `json:"version"`
	Domain    string            `json:"domain"`
	Namespace string            `json:"namespace"`
	Endpoints map[string]string `json:"endpoints"`
}

// Event announces a record accepted or removed by the homeserver. It is
// fanned out to realtime subscribers.
type Event struct {
	// Op is "PUT" or "DEL".
	Op    string `json:"op"`
	Owner string `json:"owner"`
	Kind  string `json:"kind"`
	ID    string `json:"id"`
	// URI is the owner-qualified resource locator.
	URI       string    `json:"uri"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventOpPut    = "PUT"
	EventOpDelete = "DEL"
)
