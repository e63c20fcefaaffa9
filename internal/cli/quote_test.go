package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clikenova/storefront/internal/core/domain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(new(nopWriter))
	cmd.SetArgs(append(args, "--env-file", ""))
	err := cmd.Execute()
	return out.String(), err
}

func TestQuoteCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "quote", "--price", "149.90", "--coupon", "desconto10", "--tax", "0.23", "--format", "json")
	require.NoError(t, err)

	var got quoteOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, quoteOutput{
		Coupon:          "DESCONTO10",
		Subtotal:        "149.90",
		Discount:        "14.99",
		DiscountedPrice: "134.91",
		TaxRate:         "0.23",
		Tax:             "31.03",
		Total:           "165.94",
	}, got)
}

func TestQuoteCommand_Text(t *testing.T) {
	out, err := runCLI(t, "quote", "--price", "39.90")
	require.NoError(t, err)
	assert.Contains(t, out, "total")
	assert.Contains(t, out, "39.90")
	assert.NotContains(t, out, "coupon")
}

func TestQuoteCommand_RejectedCoupon(t *testing.T) {
	_, err := runCLI(t, "quote", "--price", "10", "--coupon", "BOGUS")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCouponRejected)
}

func TestQuoteCommand_InvalidPrice(t *testing.T) {
	_, err := runCLI(t, "quote", "--price", "ten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --price")
}

func TestQuoteCommand_NegativePrice(t *testing.T) {
	_, err := runCLI(t, "quote", "--price=-1")
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}
