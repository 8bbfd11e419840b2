package bot

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldown_OneCommandPerPeriod(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCooldown(3 * time.Second)
	c.now = func() time.Time { return now }

	ok, _ := c.Allow("alice")
	assert.True(t, ok)

	ok, wait := c.Allow("alice")
	assert.False(t, ok)
	assert.InDelta(t, 3*time.Second, wait, float64(10*time.Millisecond))

	ok, _ = c.Allow("bob")
	assert.True(t, ok, "users are limited independently")

	now = now.Add(3 * time.Second)
	ok, _ = c.Allow("alice")
	assert.True(t, ok)
}

func TestCooldown_RefusalDoesNotExtendWait(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCooldown(2 * time.Second)
	c.now = func() time.Time { return now }

	c.Allow("alice")
	for i := 0; i < 5; i++ {
		ok, _ := c.Allow("alice")
		assert.False(t, ok)
	}

	now = now.Add(2 * time.Second)
	ok, _ := c.Allow("alice")
	assert.True(t, ok)
}

func TestCooldown_Disabled(t *testing.T) {
	c := NewCooldown(0)
	for i := 0; i < 10; i++ {
		ok, _ := c.Allow("alice")
		assert.True(t, ok)
	}

	var nilCooldown *Cooldown
	ok, _ := nilCooldown.Allow("alice")
	assert.True(t, ok)
}

func TestCooldown_PrunesIdleUsers(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCooldown(time.Second)
	c.now = func() time.Time { return now }

	for i := 0; i <= cooldownCleanupThreshold; i++ {
		c.Allow(fmt.Sprintf("user-%d", i))
	}
	assert.Equal(t, cooldownCleanupThreshold+1, c.size())

	now = now.Add(cooldownMaxIdleAge + time.Minute)
	c.Allow("fresh")
	assert.Equal(t, 1, c.size())
}
