package main

import (
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate both questionnaire documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := newProvider(cmd)
		std, err := p.Standard(cmd.Context())
		if err != nil {
			return err
		}
		exp, err := p.Expert(cmd.Context())
		if err != nil {
			return err
		}

		return printJSON(cmd, map[string]any{
			"questions":      questionsPath,
			"questionCount":  len(std.Questions),
			"multipliers":    multipliersPath,
			"industryCount":  len(exp.Multipliers),
			"qualityFactors": len(exp.QualityFactors),
		})
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
