package order

import (
	"fmt"
	"math/rand"
	"time"
)

// NewNumber builds a human-readable candidate order number from the last
// eight digits of the millisecond clock plus a random three-digit suffix,
// e.g. "ORD-56789012-047". Uniqueness is enforced by the store; on a
// collision the factory regenerates.
func NewNumber() string {
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	return fmt.Sprintf("ORD-%s-%03d", millis, rand.Intn(1000))
}
