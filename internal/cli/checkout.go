package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/yuzvak/storefront-cart/internal/application/commands"
	domainErrors "github.com/yuzvak/storefront-cart/internal/domain/errors"
)

func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Buy everything in the cart, one unit per request",
		Long: `Buy everything in the cart, one unit per request.

Units of an item are bought until the first failure for that item. If at
least one unit was bought the cart is settled per checkout.clear_policy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}

			resp, err := app.Checkout.Handle(cmd.Context(), commands.CheckoutCommand{SessionID: opts.SessionID})
			if resp != nil {
				if opts.Format == "json" {
					if werr := writeJSON(cmd.OutOrStdout(), resp); werr != nil {
						return werr
					}
				} else {
					printCheckout(cmd.OutOrStdout(), resp)
				}
			}

			if err != nil {
				if errors.Is(err, domainErrors.ErrCheckoutTransport) {
					return WrapExitError(ExitFailure, "Checkout failed unexpectedly.", err)
				}
				return err
			}

			if resp.Succeeded == 0 && resp.Failed > 0 {
				return &ExitError{Code: ExitFailure, Message: "nothing could be purchased"}
			}
			return nil
		},
	}
}
