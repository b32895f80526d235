package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/pricewatch/pkg/checks"
	"github.com/agentstation/pricewatch/pkg/pipeline"
	"github.com/agentstation/pricewatch/pkg/pricing"
)

func catalog(models ...map[string]any) map[string]any {
	data := make([]any, len(models))
	for i, m := range models {
		data[i] = m
	}
	return map[string]any{"object": "list", "data": data}
}

func staticLookup(pricingByModel map[string]map[string]*pricing.Snapshot) pipeline.ProviderLookup {
	return func(modelID string, _ map[string]any) map[string]*pricing.Snapshot {
		return pricingByModel[modelID]
	}
}

func enrichedModel(t *testing.T, result pipeline.Result, id string) map[string]any {
	t.Helper()
	data, ok := result.Payload["data"].([]any)
	require.True(t, ok)
	for _, item := range data {
		model, ok := item.(map[string]any)
		require.True(t, ok)
		if model["id"] == id {
			return model
		}
	}
	t.Fatalf("model %s not in enriched payload", id)
	return nil
}

func TestEnrichSelectsProviderAndDerivesMSRP(t *testing.T) {
	payload := catalog(map[string]any{
		"id":      "gpt-4o",
		"pricing": map[string]any{"prompt": "0.003", "completion": "0.015"},
	})
	lookup := staticLookup(map[string]map[string]*pricing.Snapshot{
		"gpt-4o": {
			"openrouter": {
				Prompt:     pricing.MustMoney("0.005"),
				Completion: pricing.MustMoney("0.025"),
			},
		},
	})

	result := pipeline.Enrich(context.Background(), payload, lookup, pipeline.Options{
		Priority: []string{"openrouter"},
	})

	aggregate := result.Aggregates["gpt-4o"]
	assert.Equal(t, "openrouter", aggregate.SelectedProvider)
	assert.Equal(t, checks.StatusAccepted, aggregate.Decisions["openrouter"].Status)

	model := enrichedModel(t, result, "gpt-4o")
	pricingBlock, ok := model["pricing"].(map[string]any)
	require.True(t, ok)

	prompt, ok := pricingBlock["prompt"].(*pricing.Money)
	require.True(t, ok)
	require.NotNil(t, prompt)
	assert.Equal(t, "0.003", prompt.String())

	msrpPrompt, ok := pricingBlock["msrp_prompt"].(*pricing.Money)
	require.True(t, ok)
	require.NotNil(t, msrpPrompt)
	assert.Equal(t, "0.005", msrpPrompt.String())

	msrpPromptMTok, ok := pricingBlock["msrp_prompt_mtok"].(*pricing.Money)
	require.True(t, ok)
	require.NotNil(t, msrpPromptMTok)
	assert.Equal(t, "5000", msrpPromptMTok.String())
}

func TestEnrichNoSelectionDropsMSRP(t *testing.T) {
	// price_equal rejection leaves nothing selected; msrp fields render null.
	payload := catalog(map[string]any{
		"id":      "gpt-4o",
		"pricing": map[string]any{"prompt": "0.003"},
	})
	lookup := staticLookup(map[string]map[string]*pricing.Snapshot{
		"gpt-4o": {
			"openrouter": {Prompt: pricing.MustMoney("0.003")},
		},
	})

	result := pipeline.Enrich(context.Background(), payload, lookup, pipeline.Options{})

	aggregate := result.Aggregates["gpt-4o"]
	assert.Equal(t, "", aggregate.SelectedProvider)
	assert.Equal(t, checks.StatusRejected, aggregate.Decisions["openrouter"].Status)

	pricingBlock := enrichedModel(t, result, "gpt-4o")["pricing"].(map[string]any)
	msrpPrompt, ok := pricingBlock["msrp_prompt"].(*pricing.Money)
	require.True(t, ok)
	assert.Nil(t, msrpPrompt)
}

func TestEnrichUnmappedModelSkipsEvaluation(t *testing.T) {
	payload := catalog(map[string]any{
		"id":      "homegrown-bot",
		"pricing": map[string]any{"prompt": "0.001"},
	})

	result := pipeline.Enrich(context.Background(), payload, staticLookup(nil), pipeline.Options{})

	aggregate := result.Aggregates["homegrown-bot"]
	assert.Nil(t, aggregate.Decisions)
	assert.Equal(t, "", aggregate.SelectedProvider)

	// Pricing is still normalized even without provider data.
	pricingBlock := enrichedModel(t, result, "homegrown-bot")["pricing"].(map[string]any)
	promptMTok, ok := pricingBlock["prompt_mtok"].(*pricing.Money)
	require.True(t, ok)
	require.NotNil(t, promptMTok)
	assert.Equal(t, "1", promptMTok.String())
}

func TestEnrichExclusions(t *testing.T) {
	payload := catalog(
		map[string]any{"id": "gpt-4o"},
		map[string]any{"id": "internal-bot"},
	)
	exclude := func(m map[string]any) bool {
		id, _ := m["id"].(string)
		return id == "internal-bot"
	}

	result := pipeline.Enrich(context.Background(), payload, nil, pipeline.Options{Exclude: exclude})

	assert.Contains(t, result.Aggregates, "gpt-4o")
	assert.NotContains(t, result.Aggregates, "internal-bot")
	assert.Contains(t, result.Excluded, "internal-bot")

	data := result.Payload["data"].([]any)
	assert.Len(t, data, 1)
}

func TestEnrichSkipsModelsWithoutID(t *testing.T) {
	payload := catalog(
		map[string]any{"id": "gpt-4o"},
		map[string]any{"pricing": map[string]any{"prompt": "0.01"}},
		map[string]any{"id": 42},
	)

	result := pipeline.Enrich(context.Background(), payload, nil, pipeline.Options{})

	assert.Len(t, result.Aggregates, 1)
	assert.Len(t, result.Payload["data"].([]any), 1)
}

func TestEnrichAppliesOverrides(t *testing.T) {
	payload := catalog(map[string]any{
		"id":      "gpt-4o",
		"details": map[string]any{"owner": "openai", "tier": "standard"},
	})
	overrides := map[string]map[string]any{
		"gpt-4o": {
			"details": map[string]any{"tier": "premium"},
			"flagged": true,
		},
	}

	result := pipeline.Enrich(context.Background(), payload, nil, pipeline.Options{Overrides: overrides})

	assert.True(t, result.Aggregates["gpt-4o"].OverridesApplied)

	model := enrichedModel(t, result, "gpt-4o")
	details := model["details"].(map[string]any)
	assert.Equal(t, "premium", details["tier"])
	assert.Equal(t, "openai", details["owner"])
	assert.Equal(t, true, model["flagged"])
}

func TestEnrichDoesNotMutateInput(t *testing.T) {
	source := map[string]any{
		"id":      "gpt-4o",
		"pricing": map[string]any{"prompt": "0.003"},
	}
	payload := catalog(source)

	pipeline.Enrich(context.Background(), payload, nil, pipeline.Options{
		Overrides: map[string]map[string]any{"gpt-4o": {"flagged": true}},
	})

	assert.Equal(t, map[string]any{"prompt": "0.003"}, source["pricing"])
	assert.NotContains(t, source, "flagged")
}

func TestEnrichKeepsPayloadObjectKey(t *testing.T) {
	result := pipeline.Enrich(context.Background(), catalog(), nil, pipeline.Options{})
	assert.Equal(t, "list", result.Payload["object"])
}

func TestDeepMerge(t *testing.T) {
	target := map[string]any{
		"a": map[string]any{"x": 1, "y": 2},
		"b": "keep",
	}
	override := map[string]any{
		"a": map[string]any{"y": 3, "z": 4},
		"c": []any{"new"},
	}

	pipeline.DeepMerge(target, override)

	assert.Equal(t, map[string]any{"x": 1, "y": 3, "z": 4}, target["a"])
	assert.Equal(t, "keep", target["b"])
	assert.Equal(t, []any{"new"}, target["c"])
}

func TestDeepMergeCopiesOverrideValues(t *testing.T) {
	nested := map[string]any{"k": "v"}
	target := map[string]any{}

	pipeline.DeepMerge(target, map[string]any{"n": nested})
	nested["k"] = "mutated"

	assert.Equal(t, map[string]any{"k": "v"}, target["n"])
}
