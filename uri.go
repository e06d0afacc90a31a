package pubky

import (
	"fmt"
	"net/url"
	"strings"
)

// publicKeyAlphabet is the z-base-32 alphabet owner keys are encoded in.
const publicKeyAlphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"

// PublicKeyLength is the text width of a z-base-32 encoded ed25519 key.
const PublicKeyLength = 52

// IsPublicKey reports whether s has the shape of an owner public key.
// It checks shape only; key resolution and signatures live outside the
// homeserver.
func IsPublicKey(s string) bool {
	if len(s) != PublicKeyLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(publicKeyAlphabet, rune(s[i])) {
			return false
		}
	}
	return true
}

// ParsePubkyURI splits pubky://<owner>/pub/<namespace>/<plural>/<id> into
// its owner, kind plural and identifier. The id segment may be empty for
// listing URIs.
func ParsePubkyURI(uriString string) (owner, plural, id string, err error) {
	uri, err := url.Parse(uriString)
	if err != nil {
		return "", "", "", fmt.Errorf("invalid uri")
	}

	if uri.Scheme != "pubky" {
		return "", "", "", fmt.Errorf("unsupported uri scheme")
	}

	owner = uri.Host
	parts := strings.Split(strings.TrimPrefix(uri.Path, "/"), "/")
	if len(parts) < 3 || parts[0] != "pub" {
		return "", "", "", fmt.Errorf("invalid pubky path")
	}

	plural = parts[2]
	if len(parts) > 3 {
		id = parts[3]
	}

	return owner, plural, id, nil
}

// ComposePubkyURI builds the owner-qualified resource locator for a
// record.
func ComposePubkyURI(owner, namespace, plural, id string) string {
	u := &url.URL{
		Scheme: "pubky",
		Host:   owner,
		Path:   fmt.Sprintf("/pub/%s/%s/%s", namespace, plural, id),
	}
	return u.String()
}
