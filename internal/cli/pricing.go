package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reactiveshots/portfolio/pkg/catalog"
)

// pricingCommand prints the published packages.
func (c *CLI) pricingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pricing [category]",
		Short: "Show pricing packages",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			return catalog.PricedSlugs(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			slugs := catalog.PricedSlugs()
			if len(args) == 1 {
				if catalog.Pricing(args[0]) == nil {
					return fmt.Errorf("no pricing for %q (priced: %s)", args[0], strings.Join(slugs, ", "))
				}
				slugs = args
			}
			printPricing(cmd.OutOrStdout(), slugs)
			return nil
		},
	}
}

func printPricing(w io.Writer, slugs []string) {
	for i, slug := range slugs {
		cat, _ := catalog.Lookup(slug)
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, StyleTitle.Render(cat.Title()))

		t := newTable([]string{"Package", "Price", "Includes"})
		for _, p := range catalog.Pricing(slug) {
			title := p.Title
			if p.BestValue {
				title += " " + StyleSuccess.Render("(best value)")
			}
			t.Row(title, StyleNumber.Render(p.Price), strings.Join(p.Features, "\n"))
		}
		fmt.Fprintln(w, t.Render())
	}
}
