// Package model defines the canonical data types persisted by the library
// core: BookCard and everything it embeds, Library, Folder, and the
// manifest it is described by. Types here carry no I/O; persistence lives
// in internal/cardstore, internal/index, and internal/manifest.
package model

import (
	crand "crypto/rand"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// idEntropy is a package-level, mutex-guarded entropy source for ulid.New,
// mirroring the "one client, one mutex" pacing idiom used elsewhere in this
// module (internal/httpclient) rather than allocating a fresh source per ID.
var (
	idMu     sync.Mutex
	idSource = ulid.Monotonic(rand.NewChaCha8(seed()), 0)
)

func seed() [32]byte {
	var s [32]byte
	_, _ = crand.Read(s[:])
	return s
}

// NewID returns a new 128-bit time-ordered unique identifier (ULID) in its
// canonical 26-character upper-case Crockford base32 form.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), idSource).String()
}
