package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"order-composer/internal/domain/entities"
	"order-composer/internal/domain/pricing"
	"order-composer/internal/infrastructure/seed"
)

func newQuoteCmd() *cobra.Command {
	var (
		catalogPath string
		productID   string
		quantity    int
		variety     string
		required    []string
		optional    []string
		markup      float64
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price one product selection against a catalog file",
		Long: `Price one product selection against a YAML catalog without a running service.

Required picks are given as group=choice or group=choice:quantity,
optional picks as group=choice=quantity.`,
		Example: `  composer quote --catalog catalog.yaml --product burger --quantity 2 \
    --variety Double --required Bun=brioche --optional Extras=cheese=2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := seed.Load(catalogPath)
			if err != nil {
				return err
			}
			product, ok := catalog.Product(productID)
			if !ok {
				return fmt.Errorf("product %q not found in %s", productID, catalogPath)
			}

			sel := entities.NewSelection(productID)
			sel.SetQuantity(quantity)
			sel.SetVariety(variety)
			for _, raw := range required {
				group, key, qty, err := parseRequiredPick(raw)
				if err != nil {
					return err
				}
				sel.ChooseRequired(group, key, qty)
			}
			for _, raw := range optional {
				group, key, qty, err := parseOptionalPick(raw)
				if err != nil {
					return err
				}
				sel.SetOptional(group, key, qty)
			}

			engine := pricing.NewEngine(markup)
			breakdown := engine.Compute(product, sel)

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(breakdown)
			}
			printBreakdown(cmd, engine, product, breakdown)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the YAML catalog")
	cmd.Flags().StringVar(&productID, "product", "", "Product id to price")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "Product quantity")
	cmd.Flags().StringVar(&variety, "variety", "", "Variety name")
	cmd.Flags().StringArrayVar(&required, "required", nil, "Required pick as group=choice[:quantity] (repeatable)")
	cmd.Flags().StringArrayVar(&optional, "optional", nil, "Optional pick as group=choice=quantity (repeatable)")
	cmd.Flags().Float64Var(&markup, "markup", pricing.DefaultMarkup, "Markup factor applied to the base price")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output the breakdown as JSON")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("product")

	return cmd
}

// parseRequiredPick reads group=choice[:quantity].
func parseRequiredPick(raw string) (group, key string, qty int, err error) {
	group, rest, ok := strings.Cut(raw, "=")
	if !ok || group == "" || rest == "" {
		return "", "", 0, fmt.Errorf("invalid required pick %q: want group=choice[:quantity]", raw)
	}

	qty = 1
	if i := strings.LastIndex(rest, ":"); i > 0 {
		if n, convErr := strconv.Atoi(rest[i+1:]); convErr == nil {
			return group, rest[:i], n, nil
		}
	}
	return group, rest, qty, nil
}

// parseOptionalPick reads group=choice=quantity.
func parseOptionalPick(raw string) (group, key string, qty int, err error) {
	group, rest, ok := strings.Cut(raw, "=")
	i := strings.LastIndex(rest, "=")
	if !ok || group == "" || i <= 0 {
		return "", "", 0, fmt.Errorf("invalid optional pick %q: want group=choice=quantity", raw)
	}

	qty, err = strconv.Atoi(rest[i+1:])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid optional pick %q: %w", raw, err)
	}
	return group, rest[:i], qty, nil
}

func printBreakdown(cmd *cobra.Command, engine *pricing.Engine, product *entities.Product, b pricing.Breakdown) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", product.Name, product.ID)
	fmt.Fprintf(out, "  markup:        x%s\n", engine.Markup().String())
	fmt.Fprintf(out, "  base price:    %s\n", b.BasePriceComponent.String())
	fmt.Fprintf(out, "  variety delta: %s\n", b.VarietyDelta.String())
	fmt.Fprintf(out, "  options extra: %s\n", b.OptionsExtra.String())
	fmt.Fprintf(out, "  quantity:      %d\n", b.Quantity)
	for _, opt := range b.NormalizedOptions {
		for _, v := range opt.Options {
			fmt.Fprintf(out, "  %s: %s x%d\n", opt.Name, v.OptionName, v.Quantity)
		}
	}
	fmt.Fprintf(out, "amount: %d\n", b.LineAmount)
}
