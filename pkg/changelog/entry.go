package changelog

import (
	"encoding/json"
)

// Direction classifies how a price moved between two snapshots.
type Direction string

const (
	// DirectionIncrease indicates the price went up, or appeared where it
	// was previously absent.
	DirectionIncrease Direction = "increase"
	// DirectionDecrease indicates the price went down, or disappeared.
	DirectionDecrease Direction = "decrease"
	// DirectionUnchanged indicates the values are equal. Only reachable
	// when the no-op filter upstream is bypassed.
	DirectionUnchanged Direction = "unchanged"
)

// FieldChange describes one pricing field's movement for one model.
// Previous and Current are canonical decimal strings and are always
// serialised, rendering null when the side had no price.
type FieldChange struct {
	Field     string    `json:"field"`
	Previous  *string   `json:"previous"`
	Current   *string   `json:"current"`
	Direction Direction `json:"direction,omitempty"`
	Delta     string    `json:"delta,omitempty"`
}

// PriceChange groups the field changes for one model.
type PriceChange struct {
	ID     string        `json:"id"`
	Fields []FieldChange `json:"fields"`
}

// Entry describes how the catalog changed between two snapshots.
//
// Added, Removed, and PriceChanges are omitted from the serialised entry
// when empty rather than emitted as empty lists, keeping entries compact;
// consumers must use presence checks. InitialSnapshot marks the first entry
// of a series, whose Added list covers the entire catalog.
type Entry struct {
	Date            string        `json:"date"`
	TotalModels     int           `json:"total_models"`
	Added           []string      `json:"added,omitempty"`
	Removed         []string      `json:"removed,omitempty"`
	PriceChanges    []PriceChange `json:"price_changes,omitempty"`
	InitialSnapshot bool          `json:"initial_snapshot,omitempty"`

	// Metadata carries extra release keys (tags, URLs) merged flat into
	// the serialised object. Core diff keys always win over metadata.
	Metadata map[string]any `json:"-"`
}

// HasChanges reports whether the entry records any membership change.
func (e Entry) HasChanges() bool {
	return len(e.Added) > 0 || len(e.Removed) > 0
}

// entryAlias prevents MarshalJSON recursion.
type entryAlias Entry

// MarshalJSON flattens Metadata into the entry object without overwriting
// any core key.
func (e Entry) MarshalJSON() ([]byte, error) {
	core, err := json.Marshal(entryAlias(e))
	if err != nil {
		return nil, err
	}
	if len(e.Metadata) == 0 {
		return core, nil
	}

	merged := make(map[string]any)
	if err := json.Unmarshal(core, &merged); err != nil {
		return nil, err
	}
	for key, value := range e.Metadata {
		if value == nil {
			continue
		}
		if _, exists := merged[key]; exists {
			continue
		}
		merged[key] = value
	}
	return json.Marshal(merged)
}
