package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/yuzvak/storefront-cart/internal/application/commands"
	"github.com/yuzvak/storefront-cart/internal/application/ports"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // checkout bought nothing or aborted
	ExitCommandError = 2 // bad config, unreachable storage, invalid arguments
)

type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns ExitFailure for errors that carry no code.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

type CLIResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

func writeJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(CLIResponse{Status: "ok", Data: data})
}

func printCatalog(w io.Writer, items []ports.CatalogItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No sweets found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", item.ID, item.Name, item.Category, item.Price.StringFixed(2), item.Quantity)
	}
	tw.Flush()
}

func printCart(w io.Writer, c *commands.CartResponse) {
	if len(c.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tMAX\tSUBTOTAL")
		for _, li := range c.Items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
				li.ID, li.Name, li.Price.StringFixed(2), li.Quantity, li.MaxStock, li.Subtotal.StringFixed(2))
		}
		tw.Flush()
		fmt.Fprintf(w, "Total: %d items, %s\n", c.TotalItems, c.TotalPrice.StringFixed(2))
	}

	printWarning(w, c.PersistenceWarning)
}

func printCheckout(w io.Writer, resp *commands.CheckoutResponse) {
	if resp.Succeeded > 0 {
		fmt.Fprintf(w, "Successfully purchased %d items!\n", resp.Succeeded)
	}
	if resp.Failed > 0 {
		fmt.Fprintf(w, "Could not purchase %d items (likely out of stock).\n", resp.Failed)
	}
	if resp.Succeeded == 0 && resp.Failed == 0 {
		fmt.Fprintln(w, "Nothing to check out.")
	}
	printWarning(w, resp.PersistenceWarning)
}

func printWarning(w io.Writer, warning string) {
	if warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
}
