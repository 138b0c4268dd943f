package quotes

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const referencePrefix = "SCQ"

const referenceAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewReference builds a human-readable quote code, e.g. SCQ-MEXA41QK7F2D.
// The timestamp component keeps codes roughly sortable; the random suffix
// avoids collisions for quotes created in the same millisecond.
func NewReference(now time.Time) string {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))

	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		// rand.Read failing means the platform entropy source is broken;
		// fall back to the nanosecond clock rather than panic.
		nano := strings.ToUpper(strconv.FormatInt(int64(now.Nanosecond()), 36))
		for len(nano) < 6 {
			nano = "0" + nano
		}
		return fmt.Sprintf("%s-%s%s", referencePrefix, stamp, nano[:6])
	}
	for i, b := range suffix {
		suffix[i] = referenceAlphabet[int(b)%len(referenceAlphabet)]
	}
	return fmt.Sprintf("%s-%s%s", referencePrefix, stamp, suffix)
}
