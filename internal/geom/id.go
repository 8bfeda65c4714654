package geom

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// idNamespace is the fixed namespace every deterministic identifier is
// derived from. Two parses of the same archive, given the same names,
// always produce the same identifiers.
var idNamespace = uuid.MustParse("6f6d6fa0-6f64-4f62-8062-706362666162")

// sequence backs NewID when the caller has no meaningful name to derive
// an identifier from. It is process-wide, matching the teacher's
// single shared identifier counter.
var sequence int64

// NewID returns a deterministic version-5 UUID string derived from
// name. If name is empty, a sequential placeholder name is minted from
// the shared counter instead, so every call still yields a distinct,
// reproducible identifier within a single process run.
func NewID(name string) string {
	if name == "" {
		n := atomic.AddInt64(&sequence, 1)
		name = fmt.Sprintf("seq-%d", n)
	}
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// ResetSequence resets the sequential fallback counter. It exists only
// for deterministic tests; the parsing pipeline never calls it.
func ResetSequence() {
	atomic.StoreInt64(&sequence, 0)
}
