package storage

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRecordID returns a random 32-character hex identifier for an analysis
// record.
func NewRecordID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure is unrecoverable process state
		panic(err)
	}
	return hex.EncodeToString(b[:])
}
