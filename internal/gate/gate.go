// Package gate guards the admin surface with a single shared passphrase.
//
// It is a cosmetic gate: no session, no lockout, no per-admin identity.
// A granted attempt only lasts for the request that carried it.
package gate

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// Header carries the passphrase on admin API requests.
const Header = "X-Admin-Passphrase"

type Gate struct {
	sum [sha256.Size]byte
}

// New creates a gate for passphrase. An empty passphrase denies everything.
func New(passphrase string) *Gate {
	g := &Gate{}
	if passphrase != "" {
		g.sum = sha256.Sum256([]byte(passphrase))
	}
	return g
}

// Attempt reports whether secret matches the passphrase.
func (g *Gate) Attempt(secret string) bool {
	if secret == "" || g.sum == [sha256.Size]byte{} {
		return false
	}
	// Hashing first keeps the comparison length independent.
	sum := sha256.Sum256([]byte(secret))
	return subtle.ConstantTimeCompare(sum[:], g.sum[:]) == 1
}

// Require rejects requests whose Header does not match.
// denied writes the response for a rejected request.
func (g *Gate) Require(denied http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !g.Attempt(r.Header.Get(Header)) {
				denied(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
