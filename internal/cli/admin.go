package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func NewAdminCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Inventory administration (requires an admin token)",
	}

	restock := &cobra.Command{
		Use:   "restock <id> <amount>",
		Short: "Add stock to a sweet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil || amount < 1 {
				return &ExitError{Code: ExitCommandError, Message: "amount must be a positive whole number"}
			}

			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}

			newQty, err := app.Admin.Restock(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"id": args[0], "new_quantity": newQty})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restocked %s, now %d in stock.\n", args[0], newQty)
			return nil
		},
	}

	cmd.AddCommand(restock)
	return cmd
}
