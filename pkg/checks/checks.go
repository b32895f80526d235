// Package checks implements the provider decision evaluator: given one
// model's Poe pricing and the pricing published by reference providers, it
// classifies every provider as accepted, rejected, missing, or disabled
// with machine-checkable reasons, and selects the single provider whose
// pricing should be trusted as the reference.
//
// Evaluation is pure and deterministic. Identical inputs always produce
// identical decisions; inputs are never mutated.
package checks

import (
	"sort"

	"github.com/agentstation/pricewatch/pkg/pricing"
)

// Option configures an evaluation call.
type Option func(*options)

type options struct {
	disabled map[string]struct{}
}

// WithDisabledProviders marks providers whose mappings are disabled. They
// are classified as disabled and skipped by every pricing check.
func WithDisabledProviders(providers ...string) Option {
	return func(o *options) {
		for _, p := range providers {
			o.disabled[p] = struct{}{}
		}
	}
}

// Evaluate computes a decision for every provider in the priority list, the
// pricing map, and the disabled set, then selects the reference provider.
//
// The provider universe preserves priority order first; remaining providers
// from the pricing map and the disabled set follow in sorted order so that
// evaluation is deterministic. The returned selection is empty when no
// provider is accepted.
func Evaluate(priority []string, providerPricing map[string]*pricing.Snapshot, poePricing pricing.Snapshot, opts ...Option) (map[string]Decision, string) {
	o := options{disabled: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&o)
	}

	universe := newOrderedSet()
	universe.add(priority...)
	universe.add(sortedKeys(providerPricing)...)
	universe.add(sortedSet(o.disabled)...)

	decisions := make(map[string]Decision, universe.len())
	for _, provider := range universe.values() {
		decisions[provider] = evaluateProvider(provider, providerPricing[provider], poePricing, o.disabled)
	}

	applyConflictChecks(decisions, universe.values())

	return decisions, selectProvider(priority, universe.values(), decisions)
}

// evaluateProvider runs the per-provider checks. All reasons are collected
// first and the status is derived once from the final reason set.
func evaluateProvider(provider string, snapshot *pricing.Snapshot, poe pricing.Snapshot, disabled map[string]struct{}) Decision {
	if _, ok := disabled[provider]; ok {
		return Decision{
			Provider: provider,
			Status:   StatusDisabled,
			Reasons:  []Reason{ReasonMappingDisabled},
		}
	}

	if !snapshot.HasValues() {
		return Decision{
			Provider: provider,
			Status:   StatusMissing,
			Pricing:  snapshot,
			Reasons:  []Reason{ReasonNoPricingData},
		}
	}

	var reasons []Reason
	if snapshot.Prompt != nil && snapshot.Prompt.IsZero() {
		reasons = append(reasons, ReasonZeroPromptPrice)
	}
	if snapshot.Completion != nil && snapshot.Completion.IsZero() {
		reasons = append(reasons, ReasonZeroCompletionPrice)
	}

	if snapshot.Prompt != nil && poe.Prompt != nil && snapshot.Prompt.LessThan(*poe.Prompt) {
		reasons = append(reasons, ReasonLowerThanPoePrompt)
	}
	if snapshot.Completion != nil && poe.Completion != nil && snapshot.Completion.LessThan(*poe.Completion) {
		reasons = append(reasons, ReasonLowerThanPoeCompletion)
	}

	priceEqual := snapshot.Prompt != nil && poe.Prompt != nil && snapshot.Prompt.Equal(*poe.Prompt)
	if snapshot.Completion != nil && poe.Completion != nil && snapshot.Completion.Equal(*poe.Completion) {
		priceEqual = true
	}
	if priceEqual {
		reasons = append(reasons, ReasonPriceEqual)
	}

	status := StatusAccepted
	if len(reasons) > 0 {
		status = StatusRejected
	}
	return Decision{Provider: provider, Status: status, Pricing: snapshot, Reasons: reasons}
}

// conflictFields are the fields checked for cross-provider disagreement.
var conflictFields = []string{"prompt", "completion"}

// applyConflictChecks rejects every provider contributing to a field where
// more than one distinct value exists among non-missing, non-disabled
// providers. Conflict reasons are appended to any reasons already raised.
func applyConflictChecks(decisions map[string]Decision, order []string) {
	for _, field := range conflictFields {
		contributors := make([]string, 0, len(order))
		values := make([]pricing.Money, 0, len(order))
		for _, provider := range order {
			decision := decisions[provider]
			if decision.Status == StatusMissing || decision.Status == StatusDisabled || decision.Pricing == nil {
				continue
			}
			value := fieldValue(decision.Pricing, field)
			if value == nil {
				continue
			}
			contributors = append(contributors, provider)
			values = append(values, *value)
		}

		if countDistinct(values) > 1 {
			reason := ConflictReason(field)
			for _, provider := range contributors {
				decision := decisions[provider]
				decision.reject(reason)
				decisions[provider] = decision
			}
		}
	}
}

func fieldValue(s *pricing.Snapshot, field string) *pricing.Money {
	switch field {
	case "prompt":
		return s.Prompt
	case "completion":
		return s.Completion
	default:
		return nil
	}
}

func countDistinct(values []pricing.Money) int {
	distinct := 0
	for i, v := range values {
		unique := true
		for j := 0; j < i; j++ {
			if v.Equal(values[j]) {
				unique = false
				break
			}
		}
		if unique {
			distinct++
		}
	}
	return distinct
}

// selectProvider picks the first accepted provider in priority order,
// falling back to any accepted provider in enumeration order.
func selectProvider(priority []string, order []string, decisions map[string]Decision) string {
	for _, provider := range priority {
		if decision, ok := decisions[provider]; ok && decision.Status == StatusAccepted {
			return provider
		}
	}
	for _, provider := range order {
		if decisions[provider].Status == StatusAccepted {
			return provider
		}
	}
	return ""
}

// orderedSet is a sequence with membership, built once per evaluation call.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (o *orderedSet) add(values ...string) {
	for _, v := range values {
		if _, ok := o.seen[v]; ok {
			continue
		}
		o.seen[v] = struct{}{}
		o.items = append(o.items, v)
	}
}

func (o *orderedSet) values() []string { return o.items }
func (o *orderedSet) len() int         { return len(o.items) }

func sortedKeys(m map[string]*pricing.Snapshot) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
