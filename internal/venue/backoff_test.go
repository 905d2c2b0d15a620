package venue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffSequenceAndCap(t *testing.T) {
	b := NewBackoff(time.Second, 30*time.Second)

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}
	for i, w := range want {
		assert.Equal(t, w, b.Next(), "attempt %d", i)
	}
}

func TestBackoffResetAfterSuccess(t *testing.T) {
	b := NewBackoff(time.Second, 30*time.Second)
	for i := 0; i < 5; i++ {
		b.Next()
	}
	b.Reset()
	assert.Equal(t, time.Second, b.Next())
	assert.Equal(t, 2*time.Second, b.Next())
}

func TestBackoffDefaults(t *testing.T) {
	b := NewBackoff(0, 0)
	assert.Equal(t, DefaultBackoffMin, b.Next())
}
