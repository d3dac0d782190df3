// Command exitcalc runs the calculators offline against local files:
//
//	exitcalc score --answers answers.json
//	exitcalc expert --input expert.json
//	exitcalc validate
//
// Results are printed as JSON on stdout; logs go to stderr.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nyashahama/exit-valuation-backend/internal/questionnaire"
	"github.com/nyashahama/exit-valuation-backend/internal/schema"
)

var (
	questionsPath   string
	multipliersPath string
	verbose         bool
)

var rootCmd = &cobra.Command{
	Use:           "exitcalc",
	Short:         "Exit readiness and company valuation calculators",
	Long:          "Scores questionnaire answers and values companies with the same documents and rules as the API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&questionsPath, "questions", "data/questions.json", "standard questionnaire document")
	rootCmd.PersistentFlags().StringVar(&multipliersPath, "multipliers", "data/experto_questions.json", "expert questionnaire document with industry multipliers")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "exitcalc:", err)
		os.Exit(1)
	}
}

// ─── SHARED ───────────────────────────────────────────────────────────────────

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func newProvider(cmd *cobra.Command) questionnaire.Provider {
	return questionnaire.NewFileProvider(questionsPath, multipliersPath, newLogger(cmd))
}

// validator is shared by all commands; the embedded schemas never change.
var validator = schema.MustNew()

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("no input file given")
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
