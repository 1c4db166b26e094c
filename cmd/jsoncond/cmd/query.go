package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/solatis/jsoncond/internal/core/db"
	"github.com/solatis/jsoncond/internal/sqlgen"
	"github.com/solatis/jsoncond/internal/types"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the rows of a table matching a condition",
	Long: `Print the rows of a table matching a condition, one JSON object per line.
The condition runs as SQL on PostgreSQL when it compiles and is evaluated in
memory otherwise. --stored names a stored condition instead of a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		table, _ := cmd.Flags().GetString("table")
		condPath, _ := cmd.Flags().GetString("condition")
		storedName, _ := cmd.Flags().GetString("stored")
		if table == "" {
			return fmt.Errorf("--table is required")
		}
		if (condPath == "") == (storedName == "") {
			return fmt.Errorf("exactly one of --condition and --stored is required")
		}

		cfg, database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		var cond types.Condition
		if storedName != "" {
			if err := requireMigrated(ctx, database); err != nil {
				return err
			}
			store, err := db.NewStore(database, nil)
			if err != nil {
				return err
			}
			if _, cond, err = store.Load(ctx, storedName); err != nil {
				return err
			}
		} else if cond, _, err = loadCondition(cmd.InOrStdin(), condPath); err != nil {
			return err
		}

		exec := db.NewExecutor(database, sqlgen.Compiler{DefaultArrayType: cfg.DefaultArrayType}, nil)
		rows, mode, err := exec.Query(ctx, table, cond)
		if err != nil {
			return err
		}
		slog.Default().Info("query complete",
			slog.String("table", table),
			slog.String("mode", string(mode)),
			slog.Int("rows", len(rows)),
		)

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, row := range rows {
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().String("table", "", "table to filter")
	queryCmd.Flags().String("condition", "", "condition file (- for stdin)")
	queryCmd.Flags().String("stored", "", "stored condition name or ID")
}
