// Command adaptive answers questions through the adaptive reasoning
// orchestrator: strategy selection, concurrent dispatch, validation, and
// revision until an answer clears the bar.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	adaptive "github.com/quanticsoul4772/adaptive-mcp-server"
)

var (
	flagConfig        string
	flagDomain        string
	flagLevel         string
	flagMinConfidence float64
	flagModel         string
	flagBaseURL       string
	flagDatabaseURL   string
	flagJSON          bool
)

func main() {
	root := &cobra.Command{
		Use:   "adaptive",
		Short: "Adaptive reasoning orchestrator",
		Long: `Routes questions through reasoning strategies, validates the answers,
and revises with a different strategy when validation rejects them.`,
		SilenceUsage: true,
	}

	ask := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	ask.Flags().StringVarP(&flagConfig, "config", "c", "", "path to YAML config file")
	ask.Flags().StringVar(&flagDomain, "domain", "", "question domain hint (math, art, ...)")
	ask.Flags().StringVar(&flagLevel, "level", "", "validation level override (basic, standard, strict, expert)")
	ask.Flags().Float64Var(&flagMinConfidence, "min-confidence", 0, "acceptance threshold override")
	ask.Flags().StringVar(&flagModel, "model", "gpt-4o-mini", "chat model")
	ask.Flags().StringVar(&flagBaseURL, "base-url", "https://api.openai.com/v1", "OpenAI-compatible API base URL")
	ask.Flags().StringVar(&flagDatabaseURL, "database-url", "", "Postgres URL for attempt history (optional)")
	ask.Flags().BoolVar(&flagJSON, "json", false, "emit the full result as JSON")
	root.AddCommand(ask)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	adaptive.SetProvider(newChatProvider(apiKey, flagModel, flagBaseURL))

	cfg := adaptive.DefaultConfig()
	if flagConfig != "" {
		loaded, err := adaptive.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	opts := []adaptive.Option{adaptive.WithConfig(cfg)}

	if flagDatabaseURL != "" {
		db, err := sqlx.Connect("postgres", flagDatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		history, err := adaptive.NewSoyHistory(db)
		if err != nil {
			return err
		}
		defer history.Close()
		history.WithEmbedder(adaptive.NewOpenAIEmbedder(apiKey).WithBaseURL(flagBaseURL))
		opts = append(opts, adaptive.WithHistory(history))

		if snapshot, err := history.LoadPerformance(cmd.Context()); err == nil && len(snapshot) > 0 {
			tracker := adaptive.NewPerformanceTracker()
			tracker.Restore(snapshot)
			opts = append(opts, adaptive.WithTracker(tracker))
		}
	}

	orch := adaptive.New(adaptive.DefaultReasoners(), adaptive.NewSynapseValidator(), opts...)

	qctx := map[string]any{}
	if flagDomain != "" {
		qctx[adaptive.ContextDomain] = flagDomain
	}
	if flagLevel != "" {
		if _, err := adaptive.ParseValidationLevel(flagLevel); err != nil {
			return err
		}
		qctx[adaptive.ContextValidationLevel] = flagLevel
	}
	if flagMinConfidence > 0 {
		qctx[adaptive.ContextMinConfidence] = flagMinConfidence
	}

	result, err := orch.Process(cmd.Context(), strings.Join(args, " "), qctx)
	if err != nil {
		var exhausted *adaptive.ExhaustedError
		if errors.As(err, &exhausted) {
			fmt.Fprintf(os.Stderr, "no acceptable answer after %d attempts (last confidence %.2f)\n",
				exhausted.Attempts, exhausted.LastConfidence)
		}
		return err
	}

	if flagJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(result.Answer)
	fmt.Printf("\nconfidence: %.2f  level: %s  attempts: %s\n",
		result.Confidence, result.Metadata["validation_level"], result.Metadata["attempts"])
	return nil
}
