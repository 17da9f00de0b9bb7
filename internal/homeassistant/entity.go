// Package homeassistant is a client for the Home Assistant REST API.
package homeassistant

import (
	"time"
)

// Attributes is the free-form attribute map attached to every entity state.
type Attributes map[string]any

// String returns the attribute as a string, or "" when absent or another type.
func (a Attributes) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the attribute as a float64. JSON numbers always decode to
// float64, so this covers every numeric attribute.
func (a Attributes) Float(key string) (float64, bool) {
	v, ok := a[key].(float64)
	return v, ok
}

// Int returns the attribute as an int.
func (a Attributes) Int(key string) (int, bool) {
	v, ok := a[key].(float64)
	return int(v), ok
}

// Strings returns the attribute as a string slice.
func (a Attributes) Strings(key string) []string {
	raw, ok := a[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Entity is one entity state as returned by GET /api/states.
type Entity struct {
	EntityID    string     `json:"entity_id"`
	State       string     `json:"state"`
	Attributes  Attributes `json:"attributes"`
	LastChanged time.Time  `json:"last_changed"`
	LastUpdated time.Time  `json:"last_updated"`
}

// controllableDomains are the domains the client knows how to operate.
var controllableDomains = map[string]bool{
	"light":   true,
	"switch":  true,
	"climate": true,
	"cover":   true,
	"fan":     true,
	"lock":    true,
}

// Domain returns the part of the entity ID before the first dot.
func (e *Entity) Domain() string {
	for i := 0; i < len(e.EntityID); i++ {
		if e.EntityID[i] == '.' {
			return e.EntityID[:i]
		}
	}
	return e.EntityID
}

// FriendlyName returns the friendly_name attribute, falling back to the
// entity ID.
func (e *Entity) FriendlyName() string {
	if name := e.Attributes.String("friendly_name"); name != "" {
		return name
	}
	return e.EntityID
}

// IsControllable reports whether the entity belongs to a domain the client
// can operate.
func (e *Entity) IsControllable() bool {
	return controllableDomains[e.Domain()]
}

// IsOn reports whether the entity is active. Climate entities report their
// HVAC mode as state, so anything except off counts as on.
func (e *Entity) IsOn() bool {
	if e.Domain() == "climate" {
		return e.State != "off" && e.State != "unavailable"
	}
	return e.State == "on"
}

// Brightness returns the light brightness (0-255).
func (e *Entity) Brightness() (int, bool) {
	return e.Attributes.Int("brightness")
}

// Temperature returns the target temperature of a climate entity, falling
// back to the measured temperature.
func (e *Entity) Temperature() (float64, bool) {
	if v, ok := e.Attributes.Float("temperature"); ok {
		return v, true
	}
	return e.Attributes.Float("current_temperature")
}

// HVACMode returns the active HVAC mode of a climate entity.
func (e *Entity) HVACMode() string {
	return e.State
}

// Unit returns the unit_of_measurement attribute.
func (e *Entity) Unit() string {
	return e.Attributes.String("unit_of_measurement")
}
