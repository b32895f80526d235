// Package pipeline enriches a primary catalog payload with reference
// pricing. For every model it normalizes the Poe pricing block, evaluates
// provider decisions, derives MSRP fields from the selected provider, and
// applies configured payload overrides.
//
// The pipeline performs no I/O: the payload is already decoded and
// provider pricing is supplied through an injected lookup.
package pipeline

import (
	"context"

	"github.com/agentstation/pricewatch/pkg/checks"
	"github.com/agentstation/pricewatch/pkg/logging"
	"github.com/agentstation/pricewatch/pkg/msrp"
	"github.com/agentstation/pricewatch/pkg/pricing"
)

// ProviderLookup returns the provider pricing snapshots for one model.
// A nil return means the model has no provider mapping at all, which skips
// evaluation entirely; an empty map means mapped but nothing found.
type ProviderLookup func(modelID string, model map[string]any) map[string]*pricing.Snapshot

// ExcludeFunc reports whether a model should be excluded from enrichment.
type ExcludeFunc func(model map[string]any) bool

// Options configures an enrichment run.
type Options struct {
	// Priority is the provider selection order.
	Priority []string

	// Disabled providers are classified as disabled during evaluation.
	Disabled []string

	// Exclude filters models out of the enriched payload.
	Exclude ExcludeFunc

	// Overrides are per-model payloads deep-merged over the enriched
	// model, keyed by model ID.
	Overrides map[string]map[string]any
}

// Result is everything produced by one enrichment run.
type Result struct {
	// Payload is the enriched catalog payload.
	Payload map[string]any

	// Aggregates holds the per-model evaluation results, keyed by ID.
	Aggregates map[string]checks.Aggregate

	// Excluded holds the models dropped by exclusion rules, keyed by ID.
	Excluded map[string]map[string]any
}

// Enrich runs the pricing enrichment pipeline over a decoded catalog
// payload. Models without a string ID are dropped; models matching the
// exclusion rules are collected separately. The input payload is not
// mutated.
func Enrich(ctx context.Context, payload map[string]any, lookup ProviderLookup, opts Options) Result {
	log := logging.FromContext(ctx)

	result := Result{
		Aggregates: make(map[string]checks.Aggregate),
		Excluded:   make(map[string]map[string]any),
	}

	data, _ := payload["data"].([]any)
	enriched := make([]any, 0, len(data))

	for _, item := range data {
		source, ok := item.(map[string]any)
		if !ok {
			continue
		}
		modelID, ok := source["id"].(string)
		if !ok {
			continue
		}

		if opts.Exclude != nil && opts.Exclude(source) {
			result.Excluded[modelID] = source
			continue
		}

		model := deepCopy(source)
		pricingPayload, _ := model["pricing"].(map[string]any)
		normalized := pricing.Normalize(pricingPayload)

		var (
			providerPricing map[string]*pricing.Snapshot
			decisions       map[string]checks.Decision
			selected        string
		)
		if lookup != nil {
			providerPricing = lookup(modelID, model)
		}
		if providerPricing != nil {
			decisions, selected = checks.Evaluate(
				opts.Priority,
				providerPricing,
				normalized.Snapshot,
				checks.WithDisabledProviders(opts.Disabled...),
			)
		}

		reference := msrp.Reference{}
		if selected != "" {
			if chosen := providerPricing[selected]; chosen != nil {
				reference = msrp.Derive(*chosen, normalized.Snapshot)
			}
		}

		pricingFields := make(map[string]any)
		for key, value := range normalized.Fields() {
			pricingFields[key] = value
		}
		for key, value := range reference.Fields() {
			pricingFields[key] = value
		}
		model["pricing"] = pricingFields

		overridesApplied := false
		if override, ok := opts.Overrides[modelID]; ok {
			DeepMerge(model, override)
			overridesApplied = true
		}

		enriched = append(enriched, model)
		result.Aggregates[modelID] = checks.Aggregate{
			ModelID:          modelID,
			Pricing:          normalized,
			ProviderPricing:  providerPricing,
			Decisions:        decisions,
			SelectedProvider: selected,
			OverridesApplied: overridesApplied,
		}

		log.Debug().
			Str("model_id", modelID).
			Str("selected_provider", selected).
			Int("providers", len(providerPricing)).
			Msg("enriched model pricing")
	}

	result.Payload = map[string]any{
		"object": payload["object"],
		"data":   enriched,
	}
	return result
}

// DeepMerge merges override into target recursively. Nested maps merge
// key-by-key; any other value replaces the target value.
func DeepMerge(target map[string]any, override map[string]any) map[string]any {
	for key, value := range override {
		if existing, ok := target[key].(map[string]any); ok {
			if overrideMap, ok := value.(map[string]any); ok {
				DeepMerge(existing, overrideMap)
				continue
			}
		}
		target[key] = deepCopyValue(value)
	}
	return target
}

// deepCopy clones a decoded payload map.
func deepCopy(m map[string]any) map[string]any {
	clone := make(map[string]any, len(m))
	for key, value := range m {
		clone[key] = deepCopyValue(value)
	}
	return clone
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return deepCopy(v)
	case []any:
		clone := make([]any, len(v))
		for i, item := range v {
			clone[i] = deepCopyValue(item)
		}
		return clone
	default:
		return v
	}
}
