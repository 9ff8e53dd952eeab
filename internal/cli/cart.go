package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yuzvak/storefront-cart/internal/application/commands"
)

type CartOptions struct {
	*RootOptions
	Quantity int
}

func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the session's cart",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := app.Carts.Show(cmd.Context(), opts.SessionID)
			return opts.printCart(cmd, resp, err)
		},
	}

	add := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a sweet to the cart at its current price and stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}

			item, err := app.Catalog.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if item.Quantity < 1 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is out of stock.\n", item.Name)
				return nil
			}

			resp, err := app.Carts.AddItem(cmd.Context(), commands.AddItemCommand{
				SessionID: opts.SessionID,
				Item: commands.ItemInput{
					ID:       item.ID,
					Price:    item.Price,
					Name:     item.Name,
					Category: item.Category,
				},
				Stock:    item.Quantity,
				Quantity: opts.Quantity,
			})
			return opts.printCart(cmd, resp, err)
		},
	}
	add.Flags().IntVar(&opts.Quantity, "qty", 1, "number of units to add")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a sweet from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := app.Carts.RemoveItem(cmd.Context(), commands.RemoveItemCommand{
				SessionID: opts.SessionID,
				ItemID:    args[0],
			})
			return opts.printCart(cmd, resp, err)
		},
	}

	update := &cobra.Command{
		Use:   "update <id> <qty>",
		Short: "Set the quantity of a sweet already in the cart",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return WrapExitError(ExitCommandError, "quantity must be a whole number", err)
			}
			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := app.Carts.UpdateQuantity(cmd.Context(), commands.UpdateQuantityCommand{
				SessionID: opts.SessionID,
				ItemID:    args[0],
				Quantity:  qty,
			})
			return opts.printCart(cmd, resp, err)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := app.Carts.Clear(cmd.Context(), opts.SessionID)
			return opts.printCart(cmd, resp, err)
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Open or close the cart view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := app.Carts.ToggleVisibility(cmd.Context(), opts.SessionID)
			if err != nil {
				return err
			}
			if opts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			state := "closed"
			if resp.Visible {
				state = "open"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cart is %s.\n", state)
			return nil
		},
	}

	cmd.AddCommand(show, add, remove, update, clearCmd, toggle)
	return cmd
}

func (o *CartOptions) printCart(cmd *cobra.Command, resp *commands.CartResponse, err error) error {
	if err != nil {
		return err
	}
	if o.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), resp)
	}
	printCart(cmd.OutOrStdout(), resp)
	return nil
}
