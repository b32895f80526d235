// Package changelog diffs catalog snapshots into structured, serialisable
// changelog entries: membership changes (added/removed model IDs) and
// per-field price deltas with direction classification.
//
// The diff is tolerant by design. Malformed models (non-object entries,
// missing or non-string IDs, unparseable price values) are skipped
// silently; a single bad model never aborts building the changelog for an
// entire release.
package changelog

import (
	"sort"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/pricewatch/pkg/pricing"
)

// PricingFields is the fixed set of fields compared between snapshots.
var PricingFields = []string{
	"prompt",
	"completion",
	"request",
	"image",
	"input_cache_read",
	"input_cache_write",
}

// ExcludeFunc reports whether a model should be left out of the diff.
type ExcludeFunc func(model map[string]any) bool

// Option configures a diff.
type Option func(*options)

type options struct {
	timestamp string
	time      *time.Time
	exclude   ExcludeFunc
}

// WithTimestamp sets an explicit entry date, passed through verbatim.
func WithTimestamp(ts string) Option {
	return func(o *options) { o.timestamp = ts }
}

// WithTime sets the entry date from a time value, rendered as UTC RFC 3339.
func WithTime(t time.Time) Option {
	return func(o *options) { o.time = &t }
}

// WithExclusions filters models out of the diff before IDs and prices are
// compared, matching the exclusion rules applied during enrichment.
func WithExclusions(exclude ExcludeFunc) Option {
	return func(o *options) { o.exclude = exclude }
}

// Build constructs the changelog entry describing the transition from
// previous to current. A nil previous payload marks the initial snapshot:
// every model is added and no price changes are computed.
func Build(current, previous map[string]any, opts ...Option) Entry {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return build(current, previous, o)
}

func build(current, previous map[string]any, o options) Entry {
	currentModels := payloadModels(current, o.exclude)
	currentIDs := modelIDs(currentModels)

	var previousModels []map[string]any
	previousIDs := make(map[string]struct{})
	if previous != nil {
		previousModels = payloadModels(previous, o.exclude)
		previousIDs = modelIDs(previousModels)
	}

	entry := Entry{
		Date:        resolveTimestamp(o),
		TotalModels: len(currentIDs),
		Added:       sortedDifference(currentIDs, previousIDs),
		Removed:     sortedDifference(previousIDs, currentIDs),
	}
	if previous != nil {
		entry.PriceChanges = buildPriceChanges(currentModels, previousModels)
	} else {
		entry.InitialSnapshot = true
	}
	return entry
}

// resolveTimestamp picks the entry date: an explicit string verbatim, a
// time value converted to UTC, or now.
func resolveTimestamp(o options) string {
	if o.timestamp != "" {
		return o.timestamp
	}
	if o.time != nil {
		return utc.Time{Time: o.time.UTC()}.Format(time.RFC3339)
	}
	return utc.Now().Format(time.RFC3339)
}

// payloadModels extracts the valid model objects from a payload's data
// list, applying exclusions. Non-object entries are skipped.
func payloadModels(payload map[string]any, exclude ExcludeFunc) []map[string]any {
	if payload == nil {
		return nil
	}
	data, _ := payload["data"].([]any)
	models := make([]map[string]any, 0, len(data))
	for _, item := range data {
		model, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if exclude != nil && exclude(model) {
			continue
		}
		models = append(models, model)
	}
	return models
}

// modelIDs collects the string IDs of a model list. Models without a
// string ID are ignored.
func modelIDs(models []map[string]any) map[string]struct{} {
	ids := make(map[string]struct{}, len(models))
	for _, model := range models {
		if id, ok := model["id"].(string); ok {
			ids[id] = struct{}{}
		}
	}
	return ids
}

func modelsByID(models []map[string]any) map[string]map[string]any {
	index := make(map[string]map[string]any, len(models))
	for _, model := range models {
		if id, ok := model["id"].(string); ok {
			index[id] = model
		}
	}
	return index
}

// sortedDifference returns the IDs in a but not in b, sorted ascending.
// Empty differences yield nil so the field is omitted from JSON.
func sortedDifference(a, b map[string]struct{}) []string {
	var diff []string
	for id := range a {
		if _, ok := b[id]; !ok {
			diff = append(diff, id)
		}
	}
	sort.Strings(diff)
	return diff
}

// buildPriceChanges compares pricing for every model present in both
// snapshots, sorted by model ID.
func buildPriceChanges(currentModels, previousModels []map[string]any) []PriceChange {
	currentIndex := modelsByID(currentModels)
	previousIndex := modelsByID(previousModels)

	shared := make([]string, 0, len(currentIndex))
	for id := range currentIndex {
		if _, ok := previousIndex[id]; ok {
			shared = append(shared, id)
		}
	}
	sort.Strings(shared)

	var changes []PriceChange
	for _, id := range shared {
		fields := diffPricingFields(currentIndex[id], previousIndex[id])
		if len(fields) > 0 {
			changes = append(changes, PriceChange{ID: id, Fields: fields})
		}
	}
	return changes
}

// diffPricingFields compares the fixed pricing field set between two
// models, sorted by field name.
//
// A previous-null to current-non-null transition is not reported: a model
// gaining a price for the first time is represented as a catalog addition,
// not a price change.
func diffPricingFields(currentModel, previousModel map[string]any) []FieldChange {
	currentPricing, _ := currentModel["pricing"].(map[string]any)
	previousPricing, _ := previousModel["pricing"].(map[string]any)

	if currentPricing == nil && previousPricing == nil {
		return nil
	}

	var changes []FieldChange
	for _, field := range PricingFields {
		currentValue := fieldMoney(currentPricing, field)
		previousValue := fieldMoney(previousPricing, field)

		if moneyEqual(currentValue, previousValue) {
			continue
		}
		if previousValue == nil && currentValue != nil {
			continue
		}

		change := FieldChange{
			Field:     field,
			Previous:  pricing.FormatMoney(previousValue),
			Current:   pricing.FormatMoney(currentValue),
			Direction: direction(previousValue, currentValue),
		}

		if previousValue != nil && currentValue != nil {
			delta := currentValue.Sub(*previousValue)
			if !delta.IsZero() {
				change.Delta = delta.String()
			}
		}

		changes = append(changes, change)
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

func fieldMoney(pricingPayload map[string]any, field string) *pricing.Money {
	if pricingPayload == nil {
		return nil
	}
	return pricing.ParseMoney(pricingPayload[field])
}

func moneyEqual(a, b *pricing.Money) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// direction classifies the movement between two optional values.
func direction(previous, current *pricing.Money) Direction {
	switch {
	case previous == nil && current == nil:
		return ""
	case previous == nil:
		return DirectionIncrease
	case current == nil:
		return DirectionDecrease
	case current.GreaterThan(*previous):
		return DirectionIncrease
	case current.LessThan(*previous):
		return DirectionDecrease
	default:
		return DirectionUnchanged
	}
}
