package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountdownExpiresOnce(t *testing.T) {
	var ticks []int
	expirations := 0
	c := NewCountdown(3, func(remaining int) {
		ticks = append(ticks, remaining)
	}, func() {
		expirations++
	})

	for i := 0; i < 5; i++ {
		c.Tick()
	}

	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.Equal(t, 1, expirations)
	assert.Equal(t, 0, c.Remaining())
}

func TestCountdownStopSuppressesExpiry(t *testing.T) {
	expirations := 0
	c := NewCountdown(2, nil, func() { expirations++ })

	c.Tick()
	c.Stop()
	c.Stop()
	c.Tick()

	assert.Equal(t, 0, expirations)
	assert.Equal(t, 1, c.Remaining())
}
