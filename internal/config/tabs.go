package config

import "github.com/google/uuid"

// CustomTab is a user-defined dashboard tab: a named subset of entity IDs
// belonging to one service configuration.
type CustomTab struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	EntityIDs       []string  `json:"entity_ids"`
	DisplayOrder    int       `json:"display_order"`
	ConfigurationID uuid.UUID `json:"configuration_id"`
}

// NewCustomTab creates a tab with a fresh ID.
func NewCustomTab(name string, configurationID uuid.UUID, entityIDs ...string) CustomTab {
	return CustomTab{
		ID:              uuid.New(),
		Name:            name,
		EntityIDs:       entityIDs,
		ConfigurationID: configurationID,
	}
}

// Contains reports whether the tab includes the given entity ID.
func (t *CustomTab) Contains(entityID string) bool {
	for _, id := range t.EntityIDs {
		if id == entityID {
			return true
		}
	}
	return false
}
