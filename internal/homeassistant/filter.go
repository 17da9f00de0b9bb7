package homeassistant

import (
	"sort"
	"strings"
)

// FilterSelected keeps only the entities in the selection. A nil selection
// means no filter was ever saved and everything passes.
func FilterSelected(entities []Entity, selected []string) []Entity {
	if selected == nil {
		return entities
	}

	allowed := make(map[string]bool, len(selected))
	for _, id := range selected {
		allowed[id] = true
	}

	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if allowed[e.EntityID] {
			out = append(out, e)
		}
	}
	return out
}

// FilterByIDs keeps only the entities whose ID appears in ids, preserving the
// entity order. Used for custom tab views.
func FilterByIDs(entities []Entity, ids []string) []Entity {
	allowed := make(map[string]bool, len(ids))
	for _, id := range ids {
		allowed[id] = true
	}

	out := make([]Entity, 0, len(ids))
	for _, e := range entities {
		if allowed[e.EntityID] {
			out = append(out, e)
		}
	}
	return out
}

// FilterControllable keeps only entities of controllable domains.
func FilterControllable(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if e.IsControllable() {
			out = append(out, e)
		}
	}
	return out
}

// SortByFriendlyName orders entities alphabetically, case-insensitive.
func SortByFriendlyName(entities []Entity) {
	sort.SliceStable(entities, func(i, j int) bool {
		return strings.ToLower(entities[i].FriendlyName()) < strings.ToLower(entities[j].FriendlyName())
	})
}
