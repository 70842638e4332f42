package cmd

import (
	"strings"

	"github.com/mj1618/websteps/internal/output"
	"github.com/mj1618/websteps/internal/steps"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the step sentences websteps understands",
	Long:  "List every step pattern in the order they are matched. The first pattern that matches a sentence wins.",
	RunE:  runSteps,
}

func init() {
	rootCmd.AddCommand(stepsCmd)
	stepsCmd.Flags().String("filter", "", "Only list patterns containing this text (case-insensitive)")
	stepsCmd.Flags().Bool("pretty", false, "Pretty-print JSON output")
}

func runSteps(cmd *cobra.Command, args []string) error {
	filter, _ := cmd.Flags().GetString("filter")
	filter = strings.ToLower(filter)

	patterns := []string{}
	for _, p := range steps.NewWebRegistry().Patterns() {
		if filter == "" || strings.Contains(strings.ToLower(p), filter) {
			patterns = append(patterns, p)
		}
	}
	return output.Print(patterns)
}
