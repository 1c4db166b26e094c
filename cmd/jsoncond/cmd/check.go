package cmd

import (
	"fmt"
	"io"

	"github.com/solatis/jsoncond/internal/rules"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate a condition against a JSON or YAML document",
	Long: `Evaluate a condition against a document and print "true" or the failure
message. Exits 1 when the condition fails and 2 when it is malformed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		condPath, _ := cmd.Flags().GetString("condition")
		dataPath, _ := cmd.Flags().GetString("data")
		return runCheck(cmd.InOrStdin(), cmd.OutOrStdout(), condPath, dataPath)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().String("condition", "", "condition file (- for stdin)")
	checkCmd.Flags().String("data", "", "document to check (- for stdin)")
}

func runCheck(in io.Reader, out io.Writer, condPath, dataPath string) error {
	if condPath == "-" && dataPath == "-" {
		return fmt.Errorf("only one of --condition and --data may read stdin")
	}
	cond, _, err := loadCondition(in, condPath)
	if err != nil {
		return err
	}
	data, err := loadData(in, dataPath)
	if err != nil {
		return err
	}

	result, err := rules.Check(cond, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result.String())
	if !result.Passed {
		return errCheckFailed
	}
	return nil
}
