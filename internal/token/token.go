// Package token issues the opaque usage tokens attached to approved license
// requests.
package token

import (
	mathrand "math/rand"
	"sync"
	"time"
)

const (
	// Prefix marks every TrustHarbor usage token.
	Prefix = "TH_"

	alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	suffixLen = 32
	tokenLen  = len(Prefix) + suffixLen
)

// Issuer generates collision-resistant usage tokens: the fixed prefix plus
// 32 characters drawn uniformly from a 62-symbol alphabet (~190 bits).
//
// The entropy source is math/rand, not crypto/rand: these are demo
// credentials, not production authorization material. A deployment that
// needs real authorization must swap the source for crypto/rand.
type Issuer struct {
	mu  sync.Mutex
	rnd *mathrand.Rand
}

// Option configures Issuer behavior.
type Option func(*Issuer)

// WithRand overrides the random source (useful for deterministic tests).
func WithRand(rnd *mathrand.Rand) Option {
	return func(i *Issuer) {
		if rnd != nil {
			i.rnd = rnd
		}
	}
}

// NewIssuer constructs an Issuer seeded from the clock.
func NewIssuer(opts ...Option) *Issuer {
	i := &Issuer{rnd: mathrand.New(mathrand.NewSource(time.Now().UnixNano()))}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// New returns a fresh usage token, always Prefix + 32 alphanumerics.
func (i *Issuer) New() string {
	buf := make([]byte, 0, tokenLen)
	buf = append(buf, Prefix...)
	i.mu.Lock()
	for n := 0; n < suffixLen; n++ {
		buf = append(buf, alphabet[i.rnd.Intn(len(alphabet))])
	}
	i.mu.Unlock()
	return string(buf)
}

var std = NewIssuer()

// New issues a token from the shared default issuer.
func New() string { return std.New() }
