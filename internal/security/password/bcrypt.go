// Package password hashes and verifies account passwords. Hashes carry a
// "{bcrypt}" algorithm prefix so the stored value identifies its scheme;
// downstream consumers key off that marker.
package password

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Prefix marks a bcrypt hash in stored credentials.
const Prefix = "{bcrypt}"

// Cost is the bcrypt work factor for new hashes.
const Cost = bcrypt.DefaultCost

// Hash returns a prefixed bcrypt hash of plain.
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return Prefix + string(b), nil
}

// Verify reports whether plain matches the prefixed hash.
func Verify(plain, hash string) bool {
	if !strings.HasPrefix(hash, Prefix) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(strings.TrimPrefix(hash, Prefix)), []byte(plain)) == nil
}

// Placeholder returns a hash of a cryptographically random value for
// accounts created through an external identity provider. Such accounts
// never log in by password; the plaintext is discarded immediately, so the
// stored hash cannot be matched by anything.
func Placeholder() (string, error) {
	return Hash(strings.ReplaceAll(uuid.NewString(), "-", ""))
}
