package geocode

import (
	"testing"
	"time"

	"zone-api/internal/zone"

	"github.com/stretchr/testify/assert"
)

func TestLRUEvictsLeastRecent(t *testing.T) {
	c := NewLRU(2, time.Hour)
	c.Set("a", zone.Point{Lat: 1})
	c.Set("b", zone.Point{Lat: 2})
	_, _ = c.Get("a")
	c.Set("c", zone.Point{Lat: 3})

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("b")
	assert.False(t, ok)
	p, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1.0, p.Lat)
}

func TestLRUExpires(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewLRU(4, time.Minute)
	c.now = func() time.Time { return now }
	c.Set("a", zone.Point{Lat: 1})

	now = now.Add(59 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	now = now.Add(2 * time.Second)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRUZeroCapacity(t *testing.T) {
	c := NewLRU(0, time.Minute)
	c.Set("a", zone.Point{})
	c.Set("b", zone.Point{})
	assert.Equal(t, 1, c.Len())
}
