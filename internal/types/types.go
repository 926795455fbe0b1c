// README: Shared identifier and coordinate value objects.
package types

import (
	"crypto/rand"
	"encoding/hex"
)

type ID string

func (id ID) String() string { return string(id) }

// NewID returns a 32-char hex identifier.
func NewID() ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return ID(hex.EncodeToString(b[:]))
}

// Point is a position in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
