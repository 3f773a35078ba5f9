// Package id issues time-sortable identifiers for runs, trades and studies.
package id

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Prefixes make a bare ID self-describing in logs and journal queries.
const (
	Run   = "run"
	Trade = "trd"
	Study = "stu"
)

var (
	mu      sync.Mutex
	entropy io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptorand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// monotonic so IDs minted in the same millisecond still sort
	entropy = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// New returns "<kind>_<ULID>" stamped with the current time.
func New(kind string) string {
	return At(kind, time.Now())
}

// At returns an ID stamped with t.
func At(kind string, t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	u, err := ulid.New(ulid.Timestamp(t.UTC()), entropy)
	if err != nil {
		// only possible if the monotonic entropy overflows within one ms
		panic(err)
	}
	if kind == "" {
		return u.String()
	}
	return kind + "_" + u.String()
}

// Parse splits an ID into its kind and the time it was minted.
func Parse(s string) (kind string, t time.Time, err error) {
	raw := s
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		kind, raw = s[:i], s[i+1:]
	}
	u, err := ulid.ParseStrict(raw)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("id: parse %q: %w", s, err)
	}
	return kind, ulid.Time(u.Time()).UTC(), nil
}
