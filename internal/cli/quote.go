package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/clikenova/storefront/internal/core/domain"
	"github.com/clikenova/storefront/internal/core/pricing"
	"github.com/clikenova/storefront/internal/infrastructure/coupon"
)

// QuoteOptions holds flags for the quote command.
type QuoteOptions struct {
	*RootOptions
	Price         string
	Coupon        string
	TaxRate       string
	CouponCode    string
	CouponPercent string
}

// NewQuoteCommand creates the quote command.
func NewQuoteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QuoteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price an order offline",
		Long: `Print the checkout breakdown for a base price, an optional coupon and a
tax rate, using the same arithmetic as the API.

Example:
  storefront quote --price 149.90 --coupon DESCONTO10 --tax 0.23
  storefront quote --price 39.90 --format json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Price, "price", "", "base price (required)")
	cmd.Flags().StringVar(&opts.Coupon, "coupon", "", "coupon code to apply")
	cmd.Flags().StringVar(&opts.TaxRate, "tax", "0", "tax rate as a fraction, e.g. 0.23")
	cmd.Flags().StringVar(&opts.CouponCode, "accept-code", coupon.DefaultCode, "the code the offline validator accepts")
	cmd.Flags().StringVar(&opts.CouponPercent, "accept-percent", "10", "percent off granted by the accepted code")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func runQuote(cmd *cobra.Command, opts *QuoteOptions) error {
	price, err := decimal.NewFromString(opts.Price)
	if err != nil {
		return fmt.Errorf("invalid --price %q: %w", opts.Price, err)
	}
	tax, err := decimal.NewFromString(opts.TaxRate)
	if err != nil {
		return fmt.Errorf("invalid --tax %q: %w", opts.TaxRate, err)
	}
	percent, err := decimal.NewFromString(opts.CouponPercent)
	if err != nil {
		return fmt.Errorf("invalid --accept-percent %q: %w", opts.CouponPercent, err)
	}

	var applied *domain.Coupon
	if opts.Coupon != "" {
		v := coupon.NewStaticValidator(opts.CouponCode, percent)
		applied, err = v.Validate(cmd.Context(), opts.Coupon)
		if err != nil {
			return fmt.Errorf("coupon %q: %w", opts.Coupon, err)
		}
	}

	b, err := pricing.Quote(price, applied, tax)
	if err != nil {
		return err
	}
	return writeQuote(cmd.OutOrStdout(), opts.Format, b, applied)
}

type quoteOutput struct {
	Coupon          string `json:"coupon,omitempty"`
	Subtotal        string `json:"subtotal"`
	Discount        string `json:"discount"`
	DiscountedPrice string `json:"discounted_price"`
	TaxRate         string `json:"tax_rate"`
	Tax             string `json:"tax"`
	Total           string `json:"total"`
}

func writeQuote(w io.Writer, format string, b pricing.Breakdown, applied *domain.Coupon) error {
	out := quoteOutput{
		Subtotal:        b.Subtotal.StringFixed(pricing.CentPlaces),
		Discount:        b.Discount.StringFixed(pricing.CentPlaces),
		DiscountedPrice: b.DiscountedPrice.StringFixed(pricing.CentPlaces),
		TaxRate:         b.TaxRate.String(),
		Tax:             b.Tax.StringFixed(pricing.CentPlaces),
		Total:           b.Total.StringFixed(pricing.CentPlaces),
	}
	if applied != nil {
		out.Coupon = applied.Code
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	if out.Coupon != "" {
		fmt.Fprintf(tw, "coupon\t%s\t\n", out.Coupon)
	}
	fmt.Fprintf(tw, "subtotal\t%s\t\n", out.Subtotal)
	fmt.Fprintf(tw, "discount\t-%s\t\n", out.Discount)
	fmt.Fprintf(tw, "discounted price\t%s\t\n", out.DiscountedPrice)
	fmt.Fprintf(tw, "tax (%s)\t%s\t\n", out.TaxRate, out.Tax)
	fmt.Fprintf(tw, "total\t%s\t\n", out.Total)
	return tw.Flush()
}
