package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/abhisek/mathsim/internal/adaptive"
	"github.com/abhisek/mathsim/internal/session"
	"github.com/abhisek/mathsim/internal/ui/report"
	"github.com/spf13/cobra"
)

var adaptCmd = &cobra.Command{
	Use:   "adapt",
	Short: "Recommend the next difficulty from a performance history",
	Long: "Adapt reads a JSON array of past session records (consistency_score,\n" +
		"is_correct) and prints the recommended difficulty. No model is called.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("history")
		current, _ := cmd.Flags().GetString("current")
		asJSON, _ := cmd.Flags().GetBool("json")

		var history any = []any{}
		if path != "" {
			var r io.Reader = cmd.InOrStdin()
			if path != "-" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			if err := json.NewDecoder(r).Decode(&history); err != nil {
				return fmt.Errorf("decode history: %w", err)
			}
		}

		rec, err := adaptive.RecommendInput(history, current)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), rec)
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Recommendation(rec, current))
		return nil
	},
}

func init() {
	adaptCmd.Flags().String("history", "", `History JSON file ("-" for stdin); empty means no history`)
	adaptCmd.Flags().String("current", session.DefaultDifficulty, "Current difficulty (easy, medium, hard)")
	adaptCmd.Flags().Bool("json", false, "Print the recommendation as JSON")
}
