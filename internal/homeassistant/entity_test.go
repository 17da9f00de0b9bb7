package homeassistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntityDomain(t *testing.T) {
	e := Entity{EntityID: "light.kitchen"}
	assert.Equal(t, "light", e.Domain())

	e = Entity{EntityID: "nodot"}
	assert.Equal(t, "nodot", e.Domain())
}

func TestEntityFriendlyName(t *testing.T) {
	e := Entity{EntityID: "light.kitchen", Attributes: Attributes{"friendly_name": "Kitchen Light"}}
	assert.Equal(t, "Kitchen Light", e.FriendlyName())

	e = Entity{EntityID: "light.kitchen", Attributes: Attributes{}}
	assert.Equal(t, "light.kitchen", e.FriendlyName())
}

func TestEntityIsControllable(t *testing.T) {
	for _, domain := range []string{"light", "switch", "climate", "cover", "fan", "lock"} {
		e := Entity{EntityID: domain + ".x"}
		assert.True(t, e.IsControllable(), domain)
	}
	for _, domain := range []string{"sensor", "binary_sensor", "sun", "person"} {
		e := Entity{EntityID: domain + ".x"}
		assert.False(t, e.IsControllable(), domain)
	}
}

func TestEntityIsOn(t *testing.T) {
	assert.True(t, (&Entity{EntityID: "light.a", State: "on"}).IsOn())
	assert.False(t, (&Entity{EntityID: "light.a", State: "off"}).IsOn())

	// Climate entities report the HVAC mode as state
	assert.True(t, (&Entity{EntityID: "climate.a", State: "heat"}).IsOn())
	assert.True(t, (&Entity{EntityID: "climate.a", State: "cool"}).IsOn())
	assert.False(t, (&Entity{EntityID: "climate.a", State: "off"}).IsOn())
	assert.False(t, (&Entity{EntityID: "climate.a", State: "unavailable"}).IsOn())
}

func TestEntityAttributes(t *testing.T) {
	e := Entity{
		EntityID: "climate.living_room",
		State:    "heat",
		Attributes: Attributes{
			"brightness":          float64(192),
			"temperature":         21.5,
			"current_temperature": 19.0,
			"unit_of_measurement": "°C",
			"hvac_modes":          []any{"off", "heat", "cool"},
		},
	}

	b, ok := e.Brightness()
	assert.True(t, ok)
	assert.Equal(t, 192, b)

	temp, ok := e.Temperature()
	assert.True(t, ok)
	assert.Equal(t, 21.5, temp)

	// Fall back to current_temperature when no target is set
	delete(e.Attributes, "temperature")
	temp, ok = e.Temperature()
	assert.True(t, ok)
	assert.Equal(t, 19.0, temp)

	assert.Equal(t, "°C", e.Unit())
	assert.Equal(t, "heat", e.HVACMode())
	assert.Equal(t, []string{"off", "heat", "cool"}, e.Attributes.Strings("hvac_modes"))

	_, ok = e.Attributes.Float("missing")
	assert.False(t, ok)
}

func TestFilterSelected(t *testing.T) {
	entities := []Entity{
		{EntityID: "light.a"},
		{EntityID: "light.b"},
		{EntityID: "sensor.c"},
	}

	// Nil selection shows everything
	assert.Len(t, FilterSelected(entities, nil), 3)

	// Empty selection hides everything
	assert.Empty(t, FilterSelected(entities, []string{}))

	got := FilterSelected(entities, []string{"light.b", "sensor.c"})
	assert.Equal(t, []string{"light.b", "sensor.c"}, entityIDs(got))
}

func TestFilterByIDs(t *testing.T) {
	entities := []Entity{
		{EntityID: "light.a"},
		{EntityID: "light.b"},
	}
	got := FilterByIDs(entities, []string{"light.b", "light.missing"})
	assert.Equal(t, []string{"light.b"}, entityIDs(got))
}

func TestFilterControllable(t *testing.T) {
	entities := []Entity{
		{EntityID: "light.a"},
		{EntityID: "sensor.b"},
		{EntityID: "lock.c"},
	}
	got := FilterControllable(entities)
	assert.Equal(t, []string{"light.a", "lock.c"}, entityIDs(got))
}

func TestSortByFriendlyName(t *testing.T) {
	entities := []Entity{
		{EntityID: "light.z", Attributes: Attributes{"friendly_name": "zeta"}},
		{EntityID: "light.a", Attributes: Attributes{"friendly_name": "Alpha"}},
		{EntityID: "light.m", Attributes: Attributes{"friendly_name": "midway"}},
	}
	SortByFriendlyName(entities)
	assert.Equal(t, []string{"light.a", "light.m", "light.z"}, entityIDs(entities))
}

func entityIDs(entities []Entity) []string {
	ids := make([]string, len(entities))
	for i, e := range entities {
		ids[i] = e.EntityID
	}
	return ids
}
