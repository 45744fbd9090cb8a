package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/roadwise-ai/intervener/internal/kb"
)

// newKBCmd creates the kb subcommand group.
func newKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Inspect and administer the intervention catalogue",
	}

	cmd.AddCommand(newKBStatsCmd())
	cmd.AddCommand(newKBListCmd())
	cmd.AddCommand(newKBShowCmd())
	cmd.AddCommand(newKBImportCmd())

	return cmd
}

// newKBStatsCmd creates the kb stats subcommand.
func newKBStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the intervention catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return fmt.Errorf("load knowledge base: %w", err)
			}
			stats := store.Stats()

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			}

			ui := NewUI(outputJSON, os.Getenv("NO_COLOR") != "")
			ui.Section("Knowledge Base")
			ui.KeyValue("Source", fmt.Sprintf("%s (%s)", cfg.KB.Source, cfg.KB.Path))
			ui.KeyValue("Interventions", stats.Total)
			ui.KeyValue("Road Types", strings.Join(stats.RoadTypes, ", "))
			for _, p := range []string{"High", "Medium", "Low"} {
				if n, ok := stats.Priorities[p]; ok {
					ui.KeyValue(p+" priority", n)
				}
			}
			return nil
		},
	}
}

// newKBListCmd creates the kb list subcommand.
func newKBListCmd() *cobra.Command {
	var keywords []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogue records",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return fmt.Errorf("load knowledge base: %w", err)
			}

			records := store.All()
			if len(keywords) > 0 {
				records = store.SearchByKeywords(keywords)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			ui := NewUI(outputJSON, os.Getenv("NO_COLOR") != "")
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					strconv.Itoa(rec.ID),
					truncate(rec.Intervention, 48),
					strings.Join(rec.RoadTypes, ";"),
					string(rec.Priority),
				})
			}
			ui.Table([]string{"ID", "Intervention", "Road Types", "Priority"}, rows)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&keywords, "keywords", nil, "filter by issue keywords")

	return cmd
}

// newKBShowCmd creates the kb show subcommand.
func newKBShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one catalogue record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}

			store, err := openStore(cmd)
			if err != nil {
				return fmt.Errorf("load knowledge base: %w", err)
			}

			rec, err := store.Get(id)
			if errors.Is(err, kb.ErrNotFound) {
				return fmt.Errorf("no intervention with id %d", id)
			}

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}

			ui := NewUI(outputJSON, os.Getenv("NO_COLOR") != "")
			ui.Section(fmt.Sprintf("Intervention %d", rec.ID))
			ui.KeyValue("Intervention", rec.Intervention)
			ui.KeyValue("Keywords", strings.Join(rec.IssueKeywords, ", "))
			ui.KeyValue("Road Types", strings.Join(rec.RoadTypes, ", "))
			ui.KeyValue("Environment", strings.Join(rec.EnvironmentTags, ", "))
			ui.KeyValue("Reference", rec.Reference)
			ui.KeyValue("Rationale", rec.Rationale)
			ui.KeyValue("Priority", string(rec.Priority))
			ui.KeyValue("Assumptions", rec.Assumptions)
			return nil
		},
	}
}

// newKBImportCmd creates the kb import subcommand.
func newKBImportCmd() *cobra.Command {
	var (
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the seed CSV catalogue into SQLite",
		Long: `Import reads the seed CSV catalogue, validates every record, and
replaces the contents of the target SQLite database. A validation
failure aborts the import and leaves the target untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(outputJSON, os.Getenv("NO_COLOR") != "")

			records, err := kb.ReadCSV(from)
			if err != nil {
				ui.Error("Failed to read %s: %v", from, err)
				return err
			}

			var bar *progressbar.ProgressBar
			if !outputJSON && IsTerminal() {
				bar = progressbar.Default(int64(len(records)), "importing")
			}

			onRecord := func(kb.Record) {
				if bar != nil {
					_ = bar.Add(1)
				}
			}

			if err := kb.ImportSQLite(cmd.Context(), to, records, onRecord); err != nil {
				ui.Error("Import failed: %v", err)
				return err
			}

			logger.Info().
				Str("from", from).
				Str("to", to).
				Int("records", len(records)).
				Msg("catalogue imported")

			if outputJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"status":  "imported",
					"records": len(records),
					"target":  to,
				})
			}

			ui.Success("Imported %d interventions into %s", len(records), to)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "data/interventions.csv", "seed CSV path")
	cmd.Flags().StringVar(&to, "to", "data/interventions.db", "target SQLite path")

	return cmd
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
