package types

import (
	"regexp"
	"strings"
)

const (
	// IdentitySeparator joins the parts of an Identity into the counter key
	IdentitySeparator = " - "

	// KeySeparator joins the parts of a Key into the stored record key
	KeySeparator = " "
)

// Identity is the nesting path of the currently executing test,
// outermost suite first and the test title last
type Identity []string

// IdentityFromName splits a testing.TB name ("TestA/sub/case") into an Identity
func IdentityFromName(name string) Identity {
	if name == "" {
		return Identity{}
	}
	return Identity(strings.Split(name, "/"))
}

// String returns the joined identity used to look up per-test counters
func (id Identity) String() string {
	return strings.Join(id, IdentitySeparator)
}

// Key addresses one captured value: the test identity followed by a discriminator,
// which is either an explicit label or a 1-based occurrence counter
type Key []string

// NewKey appends the discriminator to a copy of the identity
func NewKey(id Identity, discriminator string) Key {
	key := make(Key, 0, len(id)+1)
	key = append(key, id...)
	return append(key, discriminator)
}

// String returns the record key the value is stored under
func (k Key) String() string {
	return strings.Join(k, KeySeparator)
}

// Discriminator returns the last element of the key
func (k Key) Discriminator() string {
	if len(k) == 0 {
		return ""
	}
	return k[len(k)-1]
}

// Identity returns the key without its discriminator
func (k Key) Identity() Identity {
	if len(k) == 0 {
		return Identity{}
	}
	return Identity(k[:len(k)-1])
}

var nonWordChars = regexp.MustCompile(`\W`)

// SanitizeKey strips every non-word character from a record key.
// Distinct keys may sanitize to the same string.
func SanitizeKey(key string) string {
	return nonWordChars.ReplaceAllString(key, "")
}
