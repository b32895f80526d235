package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/pricewatch/internal/cmd/output"
	"github.com/agentstation/pricewatch/internal/config"
	"github.com/agentstation/pricewatch/pkg/logging"
	"github.com/agentstation/pricewatch/pkg/pipeline"
	"github.com/agentstation/pricewatch/pkg/pricing"
)

var (
	payloadFile  string
	providersDir string
)

// checkCmd evaluates provider pricing decisions for a catalog payload.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate provider pricing decisions for a catalog",
	Long: `Check runs the pricing reconciliation over a catalog payload and local
provider snapshots, reporting which provider (if any) was selected as the
pricing reference for each model and why the others were rejected.

Provider snapshots are JSON files named <provider>.json, each mapping
model IDs to pricing payloads.`,
	Example: `  pricewatch check --payload models.json --providers ./snapshots/providers
  pricewatch check --payload models.json --providers ./snapshots/providers -f json`,
	RunE: func(cobraCmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		payload, err := loadPayload(payloadFile)
		if err != nil {
			return err
		}

		providerData, err := loadProviderSnapshots(providersDir)
		if err != nil {
			return err
		}

		lookup := func(modelID string, _ map[string]any) map[string]*pricing.Snapshot {
			found := make(map[string]*pricing.Snapshot)
			for provider, models := range providerData {
				pricingPayload, ok := models[modelID]
				if !ok {
					continue
				}
				snapshot := pricing.Normalize(pricingPayload).Snapshot
				found[provider] = &snapshot
			}
			if len(found) == 0 {
				return nil
			}
			return found
		}

		ctx := logging.WithLogger(context.Background(), logging.Default())
		result := pipeline.Enrich(ctx, payload, lookup, pipeline.Options{
			Priority:  cfg.Providers.Priority,
			Disabled:  cfg.Providers.Disabled,
			Exclude:   cfg.Exclusions.ShouldExclude,
			Overrides: cfg.Overrides,
		})

		logging.Info().
			Int("models", len(result.Aggregates)).
			Int("excluded", len(result.Excluded)).
			Msg("evaluated catalog")

		w, closeFn, err := outputWriter()
		if err != nil {
			return err
		}
		defer closeFn()

		format := output.ParseFormat(formatFlag)
		if format == output.FormatTable {
			return output.NewFormatter(format).Format(w, decisionTable(result))
		}
		return output.NewFormatter(format).Format(w, result.Aggregates)
	},
}

func init() {
	checkCmd.Flags().StringVar(&payloadFile, "payload", "", "catalog payload JSON file (required)")
	checkCmd.Flags().StringVar(&providersDir, "providers", "", "directory of provider snapshot JSON files (required)")
	_ = checkCmd.MarkFlagRequired("payload")
	_ = checkCmd.MarkFlagRequired("providers")
	rootCmd.AddCommand(checkCmd)
}

func loadPayload(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading payload: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return payload, nil
}

// loadProviderSnapshots reads <provider>.json files mapping model IDs to
// pricing payloads.
func loadProviderSnapshots(dir string) (map[string]map[string]map[string]any, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading providers directory: %w", err)
	}

	providers := make(map[string]map[string]map[string]any)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading provider snapshot %s: %w", path, err)
		}

		var models map[string]map[string]any
		if err := json.Unmarshal(data, &models); err != nil {
			logging.Warn().Err(err).Str("provider", name).Msg("skipping malformed provider snapshot")
			continue
		}
		providers[name] = models
	}
	return providers, nil
}

// decisionTable flattens per-model decisions into rows sorted by model and
// provider.
func decisionTable(result pipeline.Result) output.Table {
	table := output.Table{
		Headers: []string{"model", "provider", "status", "selected", "reasons"},
	}

	modelIDs := make([]string, 0, len(result.Aggregates))
	for id := range result.Aggregates {
		modelIDs = append(modelIDs, id)
	}
	sort.Strings(modelIDs)

	for _, modelID := range modelIDs {
		aggregate := result.Aggregates[modelID]

		providers := make([]string, 0, len(aggregate.Decisions))
		for provider := range aggregate.Decisions {
			providers = append(providers, provider)
		}
		sort.Strings(providers)

		for _, provider := range providers {
			decision := aggregate.Decisions[provider]
			selected := ""
			if provider == aggregate.SelectedProvider {
				selected = "*"
			}
			reasons := make([]string, len(decision.Reasons))
			for i, r := range decision.Reasons {
				reasons[i] = string(r)
			}
			table.Rows = append(table.Rows, []string{
				modelID,
				provider,
				decision.Status.String(),
				selected,
				strings.Join(reasons, ", "),
			})
		}
	}
	return table
}
