// Package ids generates the prefixed, time-sortable identifiers used across
// the wire API: <PREFIX>-<base36 unix-millis>-<hex>, uppercase.
package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	PrefixDelivery    = "DD"
	PrefixReceipt     = "DR"
	PrefixServiceCase = "DS"
	PrefixAffidavit   = "DA"
	PrefixBulkBatch   = "DB"
)

const randomBytes = 3

// New returns a fresh identifier for the given prefix. The timestamp segment
// makes identifiers sort by creation time; the random suffix keeps concurrent
// writers on distinct keys.
func New(prefix string) string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	buf := make([]byte, randomBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to the timestamp alone rather than panic.
		return strings.ToUpper(fmt.Sprintf("%s-%s-%06x", prefix, ts, time.Now().UnixNano()&0xffffff))
	}
	return strings.ToUpper(fmt.Sprintf("%s-%s-%s", prefix, ts, hex.EncodeToString(buf)))
}
