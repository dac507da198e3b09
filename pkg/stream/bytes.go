package stream

import (
	"encoding/binary"
	"math/rand/v2"
)

// RandomBytes returns n pseudorandom bytes. With a seed the output is
// reproducible across calls.
func RandomBytes(n int, seed *uint64) []byte {
	var key [32]byte
	if seed != nil {
		binary.LittleEndian.PutUint64(key[:], *seed)
	} else {
		for i := 0; i < len(key); i += 8 {
			binary.LittleEndian.PutUint64(key[i:], rand.Uint64())
		}
	}

	buf := make([]byte, n)
	_, _ = rand.NewChaCha8(key).Read(buf)
	return buf
}

// PatternBytes returns n bytes cycling through 0..255
func PatternBytes(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = byte(i % 256)
	}
	return buf
}
