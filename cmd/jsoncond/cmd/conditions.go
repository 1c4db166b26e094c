package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/solatis/jsoncond/internal/core/db"
	"github.com/spf13/cobra"
)

var conditionsCmd = &cobra.Command{
	Use:     "conditions",
	Aliases: []string{"cond"},
	Short:   "Manage stored conditions",
}

var conditionsSaveCmd = &cobra.Command{
	Use:   "save NAME",
	Short: "Store a condition under NAME, replacing any existing one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		condPath, _ := cmd.Flags().GetString("condition")
		description, _ := cmd.Flags().GetString("description")

		_, body, err := loadCondition(cmd.InOrStdin(), condPath)
		if err != nil {
			return err
		}
		_, store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.DB().Close()

		saved, err := store.Save(ctx, args[0], description, body)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
		return nil
	},
}

var conditionsGetCmd = &cobra.Command{
	Use:   "get ID|NAME",
	Short: "Print a stored condition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.DB().Close()

		stored, err := store.Get(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(newConditionView(stored))
	},
}

var conditionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored conditions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.DB().Close()

		all, err := store.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tUPDATED\tDESCRIPTION")
		for _, c := range all {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.UpdatedAt.Format(time.RFC3339), c.Description)
		}
		return w.Flush()
	},
}

var conditionsDeleteCmd = &cobra.Command{
	Use:   "delete ID|NAME",
	Short: "Delete a stored condition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		_, store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.DB().Close()

		return store.Delete(ctx, args[0])
	},
}

func init() {
	rootCmd.AddCommand(conditionsCmd)
	conditionsCmd.AddCommand(conditionsSaveCmd, conditionsGetCmd, conditionsListCmd, conditionsDeleteCmd)
	conditionsSaveCmd.Flags().String("condition", "", "condition file (- for stdin)")
	conditionsSaveCmd.Flags().String("description", "", "human readable description")
}

// conditionView is the JSON rendering of a stored condition.
type conditionView struct {
	ID          string          `json:"condition_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Condition   json.RawMessage `json:"condition"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func newConditionView(s *db.StoredCondition) conditionView {
	return conditionView{
		ID:          string(s.ID),
		Name:        s.Name,
		Description: s.Description,
		Condition:   s.Body,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
