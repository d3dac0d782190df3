package main

import (
	"github.com/spf13/cobra"

	"github.com/nyashahama/exit-valuation-backend/internal/scoring"
)

var expertInputPath string

var expertCmd = &cobra.Command{
	Use:   "expert",
	Short: "Value a company with the industry multiplier method",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		raw, err := readInput(cmd, expertInputPath)
		if err != nil {
			return err
		}
		in, err := validator.ExpertInput(raw)
		if err != nil {
			return err
		}

		doc, err := newProvider(cmd).Expert(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, scoring.ComputeExpertValuation(in, doc))
	},
}

func init() {
	expertCmd.Flags().StringVar(&expertInputPath, "input", "", "expert input JSON file, - for stdin")
	_ = expertCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(expertCmd)
}
