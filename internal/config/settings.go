package config

import "sync"

// ViewSettings holds the values the player can change at runtime.
type ViewSettings struct {
	mu           sync.RWMutex
	viewDistance int // in chunks
	generator    int
}

const (
	MinViewDistance = 2
	MaxViewDistance = 32
)

var globalViewSettings = &ViewSettings{
	viewDistance: 8,
}

// GetViewDistance returns the current view distance in chunks
func GetViewDistance() int {
	globalViewSettings.mu.RLock()
	defer globalViewSettings.mu.RUnlock()
	return globalViewSettings.viewDistance
}

// SetViewDistance sets the view distance in chunks, clamped to a playable range.
func SetViewDistance(distance int) {
	globalViewSettings.mu.Lock()
	defer globalViewSettings.mu.Unlock()

	if distance < MinViewDistance {
		distance = MinViewDistance
	}
	if distance > MaxViewDistance {
		distance = MaxViewDistance
	}

	globalViewSettings.viewDistance = distance
}

// GetLoadRange returns the radius chunks are requested within
func GetLoadRange() int {
	return GetViewDistance()
}

// GetRemoveRange returns the radius beyond which chunks are unloaded. The band
// between the two keeps chunks on the boundary from reloading every step.
func GetRemoveRange() int {
	rd := GetViewDistance()
	return rd + max(rd/2, 2)
}

// GetGenerator returns the selected terrain strategy index
func GetGenerator() int {
	globalViewSettings.mu.RLock()
	defer globalViewSettings.mu.RUnlock()
	return globalViewSettings.generator
}

// SetGenerator selects a terrain strategy index. Range checking is left to the
// generator composite.
func SetGenerator(i int) {
	globalViewSettings.mu.Lock()
	defer globalViewSettings.mu.Unlock()
	globalViewSettings.generator = i
}

// Apply seeds the runtime settings from a loaded config.
func Apply(c Config) {
	SetViewDistance(c.LoadRange)
	SetGenerator(c.Generator)
}
