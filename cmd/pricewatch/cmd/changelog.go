package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/agentstation/pricewatch/internal/config"
	"github.com/agentstation/pricewatch/pkg/changelog"
	"github.com/agentstation/pricewatch/pkg/logging"
)

var snapshotsDir string

// changelogCmd rebuilds changelog entries from ordered release snapshots.
var changelogCmd = &cobra.Command{
	Use:   "changelog [snapshot files...]",
	Short: "Build changelog entries from catalog snapshots",
	Long: `Changelog diffs an ordered series of catalog snapshots into structured
changelog entries: model additions and removals plus per-field price
changes. Snapshots are processed in argument order, or sorted by filename
when read from a directory.

Each snapshot file is either a bare catalog payload or an envelope of the
form {"payload": {...}, "timestamp": "...", "metadata": {...}}.`,
	Example: `  pricewatch changelog --snapshots ./snapshots -o changelog.json
  pricewatch changelog release-v1.json release-v2.json`,
	RunE: func(_ *cobra.Command, args []string) error {
		files := args
		if snapshotsDir != "" {
			dirFiles, err := listSnapshotFiles(snapshotsDir)
			if err != nil {
				return err
			}
			files = append(dirFiles, files...)
		}
		if len(files) == 0 {
			return fmt.Errorf("no snapshot files given: use --snapshots or pass files as arguments")
		}

		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		snapshots := make([]changelog.Snapshot, 0, len(files))
		for _, file := range files {
			snapshot, err := loadSnapshot(file)
			if err != nil {
				logging.Warn().Err(err).Str("file", file).Msg("skipping snapshot")
				continue
			}
			snapshots = append(snapshots, snapshot)
		}

		entries := changelog.BuildFromSnapshots(snapshots,
			changelog.WithExclusions(cfg.Exclusions.ShouldExclude))

		logging.Info().
			Int("snapshots", len(snapshots)).
			Int("entries", len(entries)).
			Msg("built changelog")

		w, closeFn, err := outputWriter()
		if err != nil {
			return err
		}
		defer closeFn()

		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	},
}

func init() {
	changelogCmd.Flags().StringVar(&snapshotsDir, "snapshots", "", "directory of snapshot JSON files, processed in filename order")
	rootCmd.AddCommand(changelogCmd)
}

// listSnapshotFiles returns the JSON files of a directory in filename
// order, which doubles as chronological order for release snapshots.
func listSnapshotFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshots directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// loadSnapshot decodes one snapshot file. An object with a "payload" key is
// treated as an envelope carrying timestamp and metadata; anything else is
// a bare payload.
func loadSnapshot(path string) (changelog.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return changelog.Snapshot{}, err
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return changelog.Snapshot{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if payload, ok := decoded["payload"].(map[string]any); ok {
		snapshot := changelog.Snapshot{Payload: payload}
		if ts, ok := decoded["timestamp"].(string); ok {
			snapshot.Timestamp = ts
		}
		if metadata, ok := decoded["metadata"].(map[string]any); ok {
			snapshot.Metadata = metadata
		}
		return snapshot, nil
	}

	return changelog.Snapshot{Payload: decoded}, nil
}
