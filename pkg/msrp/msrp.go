// Package msrp derives reference (MSRP) prices from a selected provider's
// pricing. A provider price is only surfaced when it represents a discount
// relative to the Poe price somewhere; otherwise the derived reference
// carries no information and is dropped entirely.
package msrp

import (
	"encoding/json"

	"github.com/agentstation/pricewatch/pkg/pricing"
)

// Reference holds the derived reference prices for the fields that
// participate in MSRP output. A nil field renders as JSON null.
type Reference struct {
	Prompt          *pricing.Money
	Completion      *pricing.Money
	InputCacheRead  *pricing.Money
	InputCacheWrite *pricing.Money
}

// Derive computes the reference prices for one model.
//
// Per field: no provider value yields nil; no Poe value keeps the provider
// value (an unpriced model cannot already match the reference); a Poe price
// at or above the provider's is zeroed out; a Poe price below it keeps the
// provider value. If no field keeps a discount the whole reference is
// dropped.
func Derive(provider, poe pricing.Snapshot) Reference {
	prompt, promptDiscount := deriveField(provider.Prompt, poe.Prompt)
	completion, completionDiscount := deriveField(provider.Completion, poe.Completion)
	cacheRead, cacheReadDiscount := deriveField(provider.InputCacheRead, poe.InputCacheRead)
	cacheWrite, cacheWriteDiscount := deriveField(provider.InputCacheWrite, poe.InputCacheWrite)

	if !promptDiscount && !completionDiscount && !cacheReadDiscount && !cacheWriteDiscount {
		return Reference{}
	}

	return Reference{
		Prompt:          prompt,
		Completion:      completion,
		InputCacheRead:  cacheRead,
		InputCacheWrite: cacheWrite,
	}
}

// deriveField evaluates one field, reporting whether it represents a
// discount against the Poe price.
func deriveField(provider, poe *pricing.Money) (*pricing.Money, bool) {
	if provider == nil {
		return nil, false
	}
	if poe == nil {
		return provider, true
	}
	if !poe.LessThan(*provider) {
		return pricing.Zero(), false
	}
	return provider, true
}

// Fields serialises the reference into the msrp output schema. Every key is
// present; absent values are nil.
func (r Reference) Fields() map[string]*pricing.Money {
	mtok := func(m *pricing.Money) *pricing.Money {
		if m == nil {
			return nil
		}
		v := m.MulMTok()
		return &v
	}
	return map[string]*pricing.Money{
		"msrp_prompt":                 r.Prompt,
		"msrp_completion":             r.Completion,
		"msrp_input_cache_read":       r.InputCacheRead,
		"msrp_input_cache_write":      r.InputCacheWrite,
		"msrp_prompt_mtok":            mtok(r.Prompt),
		"msrp_completion_mtok":        mtok(r.Completion),
		"msrp_input_cache_read_mtok":  mtok(r.InputCacheRead),
		"msrp_input_cache_write_mtok": mtok(r.InputCacheWrite),
	}
}

// MarshalJSON emits the msrp output schema with canonical string values.
func (r Reference) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Fields())
}
