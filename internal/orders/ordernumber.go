package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// NewOrderNumber produces a human-readable order number:
//
//	ORD-<UTC timestamp>-<6 hex chars>
//
// The random suffix keeps numbers minted in the same second distinct; the
// unique index on orders.order_number catches the residual collision case and
// callers retry with a fresh number.
func NewOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random suffix: %w", err)
	}
	return fmt.Sprintf(
		"ORD-%s-%s",
		now.UTC().Format("20060102150405"),
		hex.EncodeToString(buf),
	), nil
}
