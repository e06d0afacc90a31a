// Package crock32 implements the Crockford-style base-32 encoding used for
// record identifiers. The alphabet is the digits plus the uppercase letters
// excluding I, L, O and U, in ascending byte order, so encodings of
// fixed-width inputs sort the same way as the inputs themselves. Encoding is
// uppercase, decoding is case-insensitive and folds the usual confusable
// characters (O to 0, I and L to 1).
package crock32

import (
	"encoding/base32"
	"fmt"
	"strings"
)

const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// InvalidEncodingError reports identifier text outside the accepted
// alphabet or with an unexpected width.
type InvalidEncodingError struct {
	Input  string
	Reason string
}

func (e InvalidEncodingError) Error() string {
	if e.Reason == "" {
		return "invalid base32 encoding"
	}
	return fmt.Sprintf("invalid base32 encoding: %s", e.Reason)
}

// Is enables errors.Is matching on InvalidEncodingError.
func (e InvalidEncodingError) Is(target error) bool {
	_, ok := target.(InvalidEncodingError)
	if ok {
		return true
	}
	_, ok = target.(*InvalidEncodingError)
	return ok
}

// ErrInvalidEncoding is the sentinel error for malformed identifier text.
var ErrInvalidEncoding = InvalidEncodingError{}

// Encode returns the canonical uppercase encoding of b.
func Encode(b []byte) string {
	return encoding.EncodeToString(b)
}

// EncodedLen returns the text length of an encoding of n bytes.
func EncodedLen(n int) int {
	return encoding.EncodedLen(n)
}

// Canonicalize folds s into the canonical uppercase form, mapping the
// Crockford confusables onto their canonical digits. It does not check
// that the result is decodable.
func Canonicalize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			c -= 'a' - 'A'
		}
		switch c {
		case 'O':
			c = '0'
		case 'I', 'L':
			c = '1'
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// Decode parses s, accepting any mix of upper- and lowercase.
func Decode(s string) ([]byte, error) {
	b, err := encoding.DecodeString(Canonicalize(s))
	if err != nil {
		return nil, InvalidEncodingError{Input: s, Reason: err.Error()}
	}
	return b, nil
}

// DecodeExact parses s and additionally requires the decoded form to be
// exactly n bytes wide.
func DecodeExact(s string, n int) ([]byte, error) {
	if len(s) != encoding.EncodedLen(n) {
		return nil, InvalidEncodingError{
			Input:  s,
			Reason: fmt.Sprintf("expected %d characters, got %d", encoding.EncodedLen(n), len(s)),
		}
	}
	return Decode(s)
}
