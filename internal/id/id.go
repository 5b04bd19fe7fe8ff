package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// Monotonic entropy keeps ids minted within the same millisecond increasing.
	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// NewEventID returns a ULID string. Event ids sort lexicographically by
// creation time and are never reused.
func NewEventID(now time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	v, err := ulid.New(ulid.Timestamp(now.UTC()), mono)
	if err != nil {
		// Only possible if entropy fails or the monotonic counter overflows
		// inside one millisecond.
		panic(err)
	}
	return v.String()
}

// NewTransactionID returns a random transaction identifier used when the
// caller does not supply one.
func NewTransactionID() string {
	return uuid.NewString()
}
