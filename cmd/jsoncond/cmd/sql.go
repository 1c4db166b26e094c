package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/solatis/jsoncond/internal/sqlgen"
	"github.com/solatis/jsoncond/internal/types"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Compile a condition to a PostgreSQL predicate",
	Long: `Compile a condition and print the predicate on the first line and its
positional parameters as a JSON array on the second.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		condPath, _ := cmd.Flags().GetString("condition")
		arrayType, _ := cmd.Flags().GetString("array-type")
		where, _ := cmd.Flags().GetBool("where")
		return runSQL(cmd.InOrStdin(), cmd.OutOrStdout(), condPath, types.ArrayRepresentation(arrayType), where)
	},
}

func init() {
	rootCmd.AddCommand(sqlCmd)
	sqlCmd.Flags().String("condition", "", "condition file (- for stdin)")
	sqlCmd.Flags().String("array-type", string(types.JSONArray), "default array representation (jsonb, native)")
	sqlCmd.Flags().Bool("where", false, "prefix the predicate with WHERE")
}

func runSQL(in io.Reader, out io.Writer, condPath string, arrayType types.ArrayRepresentation, where bool) error {
	switch arrayType {
	case types.JSONArray, types.NativeArray:
	default:
		return fmt.Errorf("--array-type must be %q or %q, got %q", types.JSONArray, types.NativeArray, arrayType)
	}

	cond, _, err := loadCondition(in, condPath)
	if err != nil {
		return err
	}
	pred, err := sqlgen.Compiler{DefaultArrayType: arrayType}.Compile(cond)
	if err != nil {
		return err
	}

	params, err := json.Marshal(pred.Params)
	if err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}
	text := pred.SQL
	if where {
		text = pred.Where()
	}
	fmt.Fprintln(out, text)
	fmt.Fprintln(out, string(params))
	return nil
}
