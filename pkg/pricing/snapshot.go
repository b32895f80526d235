package pricing

import (
	"encoding/json"
)

// Snapshot is an immutable record of per-unit prices for one model from one
// source. A nil field means the price is not published or not applicable,
// which is distinct from a published price of zero.
type Snapshot struct {
	Prompt          *Money `json:"prompt,omitempty"`
	Completion      *Money `json:"completion,omitempty"`
	Request         *Money `json:"request,omitempty"`
	Image           *Money `json:"image,omitempty"`
	InputCacheRead  *Money `json:"input_cache_read,omitempty"`
	InputCacheWrite *Money `json:"input_cache_write,omitempty"`
}

// HasValues reports whether any field carries a price. A nil snapshot has
// no values.
func (s *Snapshot) HasValues() bool {
	if s == nil {
		return false
	}
	return s.Prompt != nil || s.Completion != nil || s.Request != nil ||
		s.Image != nil || s.InputCacheRead != nil || s.InputCacheWrite != nil
}

// WithMTok returns the derived view that adds per-million-token values for
// each token-priced field that is present.
func (s Snapshot) WithMTok() WithMTok {
	return WithMTok{
		Snapshot:            s,
		PromptMTok:          mulMTok(s.Prompt),
		CompletionMTok:      mulMTok(s.Completion),
		InputCacheReadMTok:  mulMTok(s.InputCacheRead),
		InputCacheWriteMTok: mulMTok(s.InputCacheWrite),
	}
}

// WithMTok is a Snapshot enriched with per-million-token values.
type WithMTok struct {
	Snapshot

	PromptMTok          *Money
	CompletionMTok      *Money
	InputCacheReadMTok  *Money
	InputCacheWriteMTok *Money
}

// Normalize builds the enriched snapshot from a decoded pricing payload.
// Missing, empty, and unparseable fields become absent values; the payload
// itself may be nil.
func Normalize(payload map[string]any) WithMTok {
	s := Snapshot{
		Prompt:          ParseMoney(payload["prompt"]),
		Completion:      ParseMoney(payload["completion"]),
		Request:         ParseMoney(payload["request"]),
		Image:           ParseMoney(payload["image"]),
		InputCacheRead:  ParseMoney(payload["input_cache_read"]),
		InputCacheWrite: ParseMoney(payload["input_cache_write"]),
	}
	return s.WithMTok()
}

// Fields serialises the enriched snapshot into the output schema. Every key
// is present; absent prices are nil and render as JSON null.
func (w WithMTok) Fields() map[string]*Money {
	return map[string]*Money{
		"prompt":                 w.Prompt,
		"completion":             w.Completion,
		"request":                w.Request,
		"image":                  w.Image,
		"input_cache_read":       w.InputCacheRead,
		"input_cache_write":      w.InputCacheWrite,
		"prompt_mtok":            w.PromptMTok,
		"completion_mtok":        w.CompletionMTok,
		"input_cache_read_mtok":  w.InputCacheReadMTok,
		"input_cache_write_mtok": w.InputCacheWriteMTok,
	}
}

// MarshalJSON emits the output schema with canonical string values.
func (w WithMTok) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Fields())
}
