package checks

import (
	"github.com/agentstation/pricewatch/pkg/pricing"
)

// Status classifies whether a provider's price is usable as a reference.
type Status string

const (
	// StatusAccepted indicates the provider price passed every check.
	StatusAccepted Status = "accepted"
	// StatusRejected indicates at least one check raised a reason.
	StatusRejected Status = "rejected"
	// StatusMissing indicates the provider published no pricing data.
	StatusMissing Status = "missing"
	// StatusDisabled indicates the provider mapping is disabled.
	StatusDisabled Status = "disabled"
)

// String returns the string representation of a Status.
func (s Status) String() string {
	return string(s)
}

// Reason is a machine-checkable code explaining a rejection.
type Reason string

const (
	// ReasonMappingDisabled is the fixed reason carried by disabled providers.
	ReasonMappingDisabled Reason = "mapping_disabled"
	// ReasonNoPricingData is the fixed reason carried by missing providers.
	ReasonNoPricingData Reason = "no_pricing_data"
	// ReasonZeroPromptPrice flags a provider prompt price of exactly zero.
	ReasonZeroPromptPrice Reason = "zero_prompt_price"
	// ReasonZeroCompletionPrice flags a provider completion price of exactly zero.
	ReasonZeroCompletionPrice Reason = "zero_completion_price"
	// ReasonLowerThanPoePrompt flags a provider prompt price below the Poe price.
	ReasonLowerThanPoePrompt Reason = "lower_than_poe_prompt"
	// ReasonLowerThanPoeCompletion flags a provider completion price below the Poe price.
	ReasonLowerThanPoeCompletion Reason = "lower_than_poe_completion"
	// ReasonPriceEqual flags a provider whose prompt or completion price
	// matches the Poe price exactly. The two fields share one reason code.
	ReasonPriceEqual Reason = "price_equal"
)

// ConflictReason returns the reason code raised when multiple providers
// disagree on a field, e.g. "conflict_prompt".
func ConflictReason(field string) Reason {
	return Reason("conflict_" + field)
}

// Decision is the classification of one provider's pricing for one model.
type Decision struct {
	Provider string            `json:"provider"`
	Status   Status            `json:"status"`
	Pricing  *pricing.Snapshot `json:"pricing,omitempty"`
	Reasons  []Reason          `json:"reasons,omitempty"`
}

// reject appends a reason (deduplicated) and forces the status to rejected.
// Missing and disabled decisions keep their status; their fixed reason never
// co-occurs with check reasons, so conflict codes are not appended either.
func (d *Decision) reject(reason Reason) {
	if d.Status == StatusMissing || d.Status == StatusDisabled {
		return
	}
	for _, r := range d.Reasons {
		if r == reason {
			d.Status = StatusRejected
			return
		}
	}
	d.Reasons = append(d.Reasons, reason)
	d.Status = StatusRejected
}

// Aggregate holds everything computed for one model during an evaluation
// run. It is read-only after construction.
type Aggregate struct {
	ModelID          string
	Pricing          pricing.WithMTok
	ProviderPricing  map[string]*pricing.Snapshot
	Decisions        map[string]Decision
	SelectedProvider string
	OverridesApplied bool
}
