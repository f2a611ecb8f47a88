// Package xid generates prefixed, roughly time-ordered identifiers for
// records that need a unique key before they reach storage.
package xid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// New returns an id of the form prefix-millis-randomhex. The millisecond
// component keeps ids sortable by creation time; the random tail makes
// collisions within a millisecond vanishingly unlikely.
func New(prefix string) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(buf))
}
