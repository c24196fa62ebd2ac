package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/abhisek/mathsim/internal/session"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one workflow session and print the result as JSON",
	Long: "Run reads a session payload (the same JSON body the HTTP /workflow route\n" +
		"accepts) and prints the result envelope. Without --payload an empty\n" +
		"session with default settings is run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("payload")
		workflowType, _ := cmd.Flags().GetString("type")

		payload := map[string]any{}
		if path != "" {
			var err error
			if payload, err = readPayload(cmd, path); err != nil {
				return err
			}
		}
		if workflowType != "" {
			payload["workflow_type"] = workflowType
		}

		a, err := newApp(cmd, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		env, err := a.orch.Run(cmd.Context(), payload)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), env)
	},
}

func init() {
	runCmd.Flags().StringP("payload", "f", "", `Session payload JSON file ("-" for stdin)`)
	runCmd.Flags().StringP("type", "t", "", fmt.Sprintf("Workflow type, one of %v", session.WorkflowTypes))
}

// readPayload decodes a JSON object from path, or from stdin when path
// is "-".
func readPayload(cmd *cobra.Command, path string) (map[string]any, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var payload map[string]any
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
