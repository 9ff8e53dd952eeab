package cli

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yuzvak/storefront-cart/internal/application/ports"
)

type CatalogOptions struct {
	*RootOptions
	Skip     int
	Limit    int
	Category string
	MinPrice string
	MaxPrice string
}

func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse sweets",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List sweets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			items, err := app.Catalog.ListItems(cmd.Context(), opts.Skip, opts.Limit)
			if err != nil {
				return err
			}
			return opts.printItems(cmd, items)
		},
	}
	list.Flags().IntVar(&opts.Skip, "skip", 0, "number of sweets to skip")
	list.Flags().IntVar(&opts.Limit, "limit", 100, "maximum number of sweets")

	search := &cobra.Command{
		Use:   "search [text]",
		Short: "Search sweets by name, category and price",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := opts.searchQuery(args)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid search", err)
			}
			app, err := opts.App(cmd.Context())
			if err != nil {
				return err
			}
			items, err := app.Catalog.SearchItems(cmd.Context(), query)
			if err != nil {
				return err
			}
			return opts.printItems(cmd, items)
		},
	}
	search.Flags().StringVar(&opts.Category, "category", "", "exact category")
	search.Flags().StringVar(&opts.MinPrice, "min-price", "", "minimum unit price")
	search.Flags().StringVar(&opts.MaxPrice, "max-price", "", "maximum unit price")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one sweet",
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
			return opts.printItems(cmd, []ports.CatalogItem{*item})
		},
	}

	cmd.AddCommand(list, search, show)
	return cmd
}

func (o *CatalogOptions) searchQuery(args []string) (ports.SearchQuery, error) {
	query := ports.SearchQuery{Category: o.Category}
	if len(args) == 1 {
		query.Q = args[0]
	}

	var err error
	if query.PriceMin, err = parsePrice(o.MinPrice); err != nil {
		return query, fmt.Errorf("--min-price: %w", err)
	}
	if query.PriceMax, err = parsePrice(o.MaxPrice); err != nil {
		return query, fmt.Errorf("--max-price: %w", err)
	}

	return query, nil
}

func (o *CatalogOptions) printItems(cmd *cobra.Command, items []ports.CatalogItem) error {
	if o.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), items)
	}
	printCatalog(cmd.OutOrStdout(), items)
	return nil
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
