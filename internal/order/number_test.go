package order

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var numberPattern = regexp.MustCompile(`^ORD-\d{1,8}-\d{3}$`)

func TestNewNumber_Format(t *testing.T) {
	for i := 0; i < 50; i++ {
		n := NewNumber()
		assert.Regexp(t, numberPattern, n)
	}
}
