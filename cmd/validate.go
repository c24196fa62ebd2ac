package cmd

import (
	"fmt"

	"github.com/abhisek/mathsim/internal/consistency"
	"github.com/abhisek/mathsim/internal/jsonlike"
	"github.com/abhisek/mathsim/internal/ui/report"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Score a simulated attempt for consistency with a disability profile",
	Long: "Validate reads a JSON object with problem, disability, student_attempt and\n" +
		"expected_answer and prints the consistency report. No model is called.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("input")
		asJSON, _ := cmd.Flags().GetBool("json")

		in, err := readPayload(cmd, path)
		if err != nil {
			return err
		}
		for _, field := range []string{"problem", "disability", "student_attempt", "expected_answer"} {
			if !jsonlike.Truthy(in[field]) {
				return fmt.Errorf("input is missing %s", field)
			}
		}
		problem := in["problem"]
		if m, ok := problem.(map[string]any); ok && jsonlike.Truthy(m["problem"]) {
			problem = m["problem"]
		}

		r, err := consistency.ValidateInput(
			jsonlike.Text(problem),
			jsonlike.Text(in["disability"]),
			in["student_attempt"],
			jsonlike.Text(in["expected_answer"]),
		)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), r)
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Consistency(r))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("input", "i", "-", `Input JSON file ("-" for stdin)`)
	validateCmd.Flags().Bool("json", false, "Print the report as JSON")
}
