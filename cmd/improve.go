package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/abhisek/mathsim/internal/ui/report"
	"github.com/spf13/cobra"
)

var improveCmd = &cobra.Command{
	Use:   "improve",
	Short: "Analyze past attempts and suggest practice problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("input")
		asJSON, _ := cmd.Flags().GetBool("json")

		var r io.Reader = cmd.InOrStdin()
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		logs, err := io.ReadAll(r)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		rep, err := a.improvement.Run(cmd.Context(), string(logs))
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), rep)
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.Improvement(rep))
		return nil
	},
}

func init() {
	improveCmd.Flags().StringP("input", "i", "-", `Past attempts text file ("-" for stdin)`)
	improveCmd.Flags().Bool("json", false, "Print the report as JSON")
}
