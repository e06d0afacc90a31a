package specs

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxShortContentLength is the character limit for short-form posts
	// and the default for kinds without a long-form allowance.
	MaxShortContentLength = 1000
	// MaxLongContentLength is the character limit for long-form posts.
	MaxLongContentLength = 50000
)

const (
	// DeletedSentinel is the content marker the homeserver writes when a
	// post is deleted but the record is kept because other users still
	// hold relationships to it (replies, tags). Clients match it
	// literally, so it may never appear as user-submitted content.
	DeletedSentinel = "[DELETED]"

	deletedPlaceholder = "empty"
)

// PostKind describes how a post's content is best displayed.
type PostKind string

const (
	PostKindShort PostKind = "short"
	PostKindLong  PostKind = "long"
	PostKindImage PostKind = "image"
	PostKindVideo PostKind = "video"
	PostKindLink  PostKind = "link"
	PostKindFile  PostKind = "file"
)

func (k PostKind) String() string { return string(k) }

// UnmarshalJSON accepts the lowercase wire form, defaults an absent or
// empty kind to short, and rejects anything outside the enum.
func (k *PostKind) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch kind := PostKind(strings.ToLower(s)); kind {
	case PostKindShort, PostKindLong, PostKindImage, PostKindVideo, PostKindLink, PostKindFile:
		*k = kind
	case "":
		*k = PostKindShort
	default:
		return fmt.Errorf("unknown post kind: %q", s)
	}
	return nil
}

// maxContentLength selects the per-kind character limit.
func (k PostKind) maxContentLength() int {
	if k == PostKindLong {
		return MaxLongContentLength
	}
	return MaxShortContentLength
}

// PostEmbed references reposted or quoted content.
type PostEmbed struct {
	Kind PostKind `json:"kind"`
	URI  string   `json:"uri"`
}

// Post is a user-authored post stored under
// pubky:///pub/pubky.app/posts/:id, where the identifier is the
// Crockford-base32 encoding of the creation timestamp.
type Post struct {
	Content string   `json:"content"`
	Kind    PostKind `json:"kind"`
	// Parent is the URI of the post this one replies to, if any.
	Parent      string     `json:"parent,omitempty"`
	Embed       *PostEmbed `json:"embed,omitempty"`
	Attachments []string   `json:"attachments,omitempty"`
}

// NewPost builds a sanitized post and stamps its time-ordered identifier.
// Future edits by the author produce a brand-new record with a fresh
// identifier; records are never updated in place.
func NewPost(content string, kind PostKind) (*Post, string) {
	post := &Post{Content: content, Kind: kind}
	post.Sanitize() // optional fields only, cannot fail
	return post, NewTimestampID()
}

// RecordKind implements Record.
func (p *Post) RecordKind() Kind { return KindPost }

// Sanitize implements Record. All post fields besides content are
// optional, so sanitize never fails: malformed URIs are discarded rather
// than rejecting the record.
func (p *Post) Sanitize() error {
	content := strings.TrimSpace(p.Content)

	// The deleted marker is reserved for the homeserver; posting it as
	// literal content is not allowed.
	if content == DeletedSentinel {
		content = deletedPlaceholder
	}

	if p.Kind == "" {
		p.Kind = PostKindShort
	}

	// Truncation can land on whitespace; trim again so sanitize is a
	// fixed point.
	p.Content = strings.TrimSpace(truncateChars(content, p.Kind.maxContentLength()))

	if p.Parent != "" {
		if uri, ok := normalizeURI(p.Parent); ok {
			p.Parent = uri
		} else {
			p.Parent = ""
		}
	}

	if p.Embed != nil {
		if uri, ok := normalizeURI(p.Embed.URI); ok {
			if p.Embed.Kind == "" {
				p.Embed.Kind = PostKindShort
			}
			p.Embed.URI = uri
		} else {
			p.Embed = nil
		}
	}

	if len(p.Attachments) > 0 {
		kept := make([]string, 0, len(p.Attachments))
		for _, attachment := range p.Attachments {
			if uri, ok := normalizeURI(attachment); ok {
				kept = append(kept, uri)
			}
		}
		if len(kept) == 0 {
			kept = nil
		}
		p.Attachments = kept
	} else {
		p.Attachments = nil
	}

	return nil
}

// Tombstone returns the framework-generated marker stored in place of a
// deleted post that other users still hold relationships to. It is
// written by the homeserver directly, never accepted from a client.
func Tombstone() *Post {
	return &Post{Content: DeletedSentinel, Kind: PostKindShort}
}

// Validate implements Record. The creation instant is not recoverable
// from content, so the identifier check is structural; the content length
// is re-checked independently of Sanitize so the two cannot silently
// diverge.
func (p *Post) Validate(id string) error {
	if err := CheckTimestampID(id); err != nil {
		return err
	}

	if count := utf8.RuneCountInString(p.Content); count > p.Kind.maxContentLength() {
		return ContentTooLongError{Limit: p.Kind.maxContentLength(), Count: count}
	}

	return nil
}
