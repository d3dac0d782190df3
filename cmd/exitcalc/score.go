package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
)

var scoreAnswersPath string

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute the exit readiness score of an answer set",
	Long:  "Reads a JSON object of question id to answer and prints the readiness score, segment and valuation range.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, err := readInput(cmd, scoreAnswersPath)
		if err != nil {
			return err
		}
		answers, err := validator.Answers(raw)
		if err != nil {
			return err
		}

		doc, err := newProvider(cmd).Standard(cmd.Context())
		if err != nil {
			return err
		}

		result, err := scoring.ComputeReadinessScore(answers, doc)
		if err != nil {
			return fmt.Errorf("score: %w", err)
		}
		return printJSON(cmd, result)
	},
}

func init() {
	scoreCmd.Flags().StringVar(&scoreAnswersPath, "answers", "", "answers JSON file, - for stdin")
	_ = scoreCmd.MarkFlagRequired("answers")
	rootCmd.AddCommand(scoreCmd)
}
