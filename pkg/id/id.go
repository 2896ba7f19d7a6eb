package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seed a PRNG from crypto/rand so ULID entropy is unpredictable.
	// ulid.Monotonic keeps IDs generated within the same millisecond
	// lexicographically increasing, so the book stays time-ordered.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns a ULID string used as a trade ID.
//
// ULIDs sort by creation time, which keeps `ls` output and the SQLite
// history index in entry order without an extra sort column. Partial-close
// children derive their IDs from the parent instead of calling New.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), mono)
	if err != nil {
		// Only possible if time goes backwards or entropy fails.
		panic(err)
	}
	return id.String()
}

// Short returns the display form of a trade ID: the first 8 characters,
// enough to disambiguate in a personal book. Partial-close children keep
// their -P<n> suffix so they stay recognizable next to the parent.
func Short(full string) string {
	if i := strings.IndexByte(full, '-'); i > 8 {
		return full[:8] + full[i:]
	}
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
