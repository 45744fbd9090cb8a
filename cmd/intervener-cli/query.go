package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/roadwise-ai/intervener/internal/explain"
	"github.com/roadwise-ai/intervener/internal/report"
	"github.com/roadwise-ai/intervener/internal/retrieval"
)

// newQueryCmd creates the query subcommand.
func newQueryCmd() *cobra.Command {
	var (
		roadType    string
		environment string
		topK        int
		minScore    float64
		reportPath  string
	)

	cmd := &cobra.Command{
		Use:   "query [issue description]",
		Short: "Recommend interventions for a road safety issue",
		Long: `Query scores the issue description against the intervention catalogue
and prints the top-ranked recommendations with confidence labels.

When no confident match exists, the CLI prints fallback guidance instead
of low-quality recommendations. Use --report to also write a full report
file; the format follows the file extension (.json or anything else for
plain text).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			ui := NewUI(outputJSON, os.Getenv("NO_COLOR") != "")

			store, err := openStore(cmd)
			if err != nil {
				ui.Error("Failed to load knowledge base: %v", err)
				return err
			}

			engine := retrieval.NewEngine(store, retrieval.ScoringConfig{
				RoadTypeBoost:    cfg.Retrieval.RoadTypeBoost,
				EnvBoostMax:      cfg.Retrieval.EnvBoostMax,
				SimilarityCutoff: cfg.Retrieval.SimilarityCutoff,
			})

			var spin *spinner.Spinner
			if !outputJSON && IsTerminal() {
				spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
				spin.Suffix = " Scoring interventions..."
				spin.Start()
			}

			result, err := engine.RetrieveAndRank(retrieval.Request{
				Query:       query,
				RoadType:    roadType,
				Environment: environment,
				TopK:        topK,
				MinScore:    minScore,
			})

			if spin != nil {
				spin.Stop()
			}

			switch {
			case errors.Is(err, retrieval.ErrEmptyQuery):
				ui.Warning("Query has no scorable terms; describe the issue in more detail.")
				return err
			case errors.Is(err, retrieval.ErrInvalidArgument):
				ui.Error("%v", err)
				return err
			case err != nil:
				return fmt.Errorf("retrieval failed: %w", err)
			}

			logger.Info().
				Str("query", query).
				Bool("confident", result.Confident).
				Float64("top_score", result.TopScore()).
				Msg("query scored")

			if !result.Confident {
				return printFallback(ui, query)
			}

			summary := report.Summary{
				Query:       query,
				RoadType:    roadType,
				Environment: environment,
			}
			if result.UsedDefaultRoadType {
				summary.RoadType = retrieval.DefaultRoadType + " (default)"
			}
			doc := report.New(summary, explain.FormatResult(result))

			if reportPath != "" {
				if err := writeReportFile(reportPath, doc); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				ui.Success("Report written to %s", reportPath)
			}

			if outputJSON {
				return doc.WriteJSON(os.Stdout)
			}

			printRecommendations(ui, doc)
			return nil
		},
	}

	cmd.Flags().StringVar(&roadType, "road-type", "", "road context (urban, highway, rural)")
	cmd.Flags().StringVar(&environment, "environment", "", "environment context (e.g. curve, school zone)")
	cmd.Flags().IntVar(&topK, "top-k", retrieval.DefaultTopK, "maximum recommendations to return")
	cmd.Flags().Float64Var(&minScore, "min-score", retrieval.DefaultMinScore, "confidence floor in [0,1]")
	cmd.Flags().StringVar(&reportPath, "report", "", "write a full report to this path")

	return cmd
}

// printRecommendations renders the recommendation cards to the terminal.
func printRecommendations(ui *UI, doc report.Document) {
	ui.Section("Recommended Interventions")
	ui.KeyValue("Issue", doc.Query.Query)
	ui.KeyValue("Road Type", doc.Query.RoadType)
	ui.KeyValue("Environment", doc.Query.Environment)
	ui.Newline()

	for i, rec := range doc.Recommendations {
		ui.Step("Recommendation %d (%s, %.1f%%)", i+1, rec.Confidence, rec.RelevancePct)
		ui.KeyValue("Intervention", rec.Intervention)
		ui.KeyValue("Reference", rec.Reference)
		ui.KeyValue("Rationale", rec.Rationale)
		ui.KeyValue("Priority", rec.Priority)
		ui.KeyValue("Assumptions", rec.Assumptions)
		ui.Newline()
	}

	ui.Info("All recommendations are material-only estimates; labor and taxes excluded.")
}

// printFallback renders the no-match guidance.
func printFallback(ui *UI, query string) error {
	fb := explain.Fallback(query)

	if outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(fb)
	}

	ui.Warning("%s", fb.Message)
	ui.Newline()
	for _, s := range fb.Suggestions {
		ui.Step("%s", s)
	}
	ui.Newline()
	ui.Info("%s", fb.FallbackAction)
	return nil
}

// writeReportFile writes the report document to path, choosing the format
// from the file extension.
func writeReportFile(path string, doc report.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if filepath.Ext(path) == ".json" {
		return doc.WriteJSON(f)
	}
	return doc.WriteText(f)
}
