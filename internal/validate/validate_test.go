package validate_test

import (
	"errors"
	"testing"
	"time"

	"github.com/gourmet-kitchen/ordersys/internal/enum"
	"github.com/gourmet-kitchen/ordersys/internal/validate"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, validate.ErrInvalid), "expected validation error, got %v", err)
	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, field, verr.Field)
}

func TestPrice(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"15.99", "15.99", true},
		{"$1.5", "1.50", true},
		{" 12 ", "12.00", true},
		{"0", "0.00", true},
		{"999.99", "999.99", true},
		{"9.999", "10.00", true},
		{"1,000.00", "", false},
		{"-1", "", false},
		{"abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := validate.Price(tt.input)
			if !tt.ok {
				requireField(t, err, "price")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestQuantity(t *testing.T) {
	q, err := validate.Quantity(" 3 ")
	require.NoError(t, err)
	assert.Equal(t, 3, q)

	for _, bad := range []string{"", "0", "-2", "1000", "2.5", "two"} {
		_, err := validate.Quantity(bad)
		requireField(t, err, "quantity")
	}
}

func TestPhone(t *testing.T) {
	got, err := validate.Phone("(555) 123-4567", false)
	require.NoError(t, err)
	assert.Equal(t, "(555) 123-4567", got, "original formatting is kept")

	got, err = validate.Phone("+44 20 7946 0958", true)
	require.NoError(t, err)
	assert.Equal(t, "+44 20 7946 0958", got)

	got, err = validate.Phone("   ", false)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = validate.Phone("", true)
	requireField(t, err, "customer_phone")

	_, err = validate.Phone("12-34", false)
	requireField(t, err, "customer_phone")

	_, err = validate.Phone("555-CALL-NOW", false)
	requireField(t, err, "customer_phone")
}

func TestEmail(t *testing.T) {
	got, err := validate.Email("  Chef@Gourmet.Kitchen ", true)
	require.NoError(t, err)
	assert.Equal(t, "chef@gourmet.kitchen", got)

	got, err = validate.Email("", false)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = validate.Email("", true)
	requireField(t, err, "email")

	_, err = validate.Email("not-an-email", false)
	requireField(t, err, "email")
}

func TestTableNumber(t *testing.T) {
	got, err := validate.TableNumber(" patio-4 ")
	require.NoError(t, err)
	assert.Equal(t, "PATIO-4", got)

	_, err = validate.TableNumber("table#1")
	requireField(t, err, "table_number")

	_, err = validate.TableNumber("ABCDEFGHIJK")
	requireField(t, err, "table_number")
}

func TestCategory(t *testing.T) {
	got, err := validate.Category("Mains", enum.Categories)
	require.NoError(t, err)
	assert.Equal(t, enum.CategoryMains, got)

	_, err = validate.Category("pizza", enum.Categories)
	requireField(t, err, "category")
}

func TestTaxRate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0.08", "0.08"},
		{"8", "0.08"},
		{"8.25%", "0.0825"},
		{"1", "1"},
		{"0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := validate.TaxRate(tt.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(requireDecimal(t, tt.want)), "got %s want %s", got, tt.want)
		})
	}

	for _, bad := range []string{"-0.1", "150", "abc", ""} {
		_, err := validate.TaxRate(bad)
		requireField(t, err, "tax_rate")
	}
}

func TestDateRange(t *testing.T) {
	from, to, err := validate.DateRange("2026-01-01", "2026-01-31", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), to)

	from, to, err = validate.DateRange("", "", "")
	require.NoError(t, err)
	assert.True(t, from.IsZero())
	assert.True(t, to.IsZero())

	_, _, err = validate.DateRange("2026-02-01", "2026-01-01", "")
	requireField(t, err, "start_date")

	_, _, err = validate.DateRange("01/02/2026", "", "")
	requireField(t, err, "start_date")
}

func TestRequiredString(t *testing.T) {
	got, err := validate.RequiredString("  Burger ", "name", 1, 100)
	require.NoError(t, err)
	assert.Equal(t, "Burger", got)

	_, err = validate.RequiredString("   ", "name", 1, 100)
	requireField(t, err, "name")

	_, err = validate.RequiredString("abcdef", "name", 1, 5)
	requireField(t, err, "name")
}

func TestSearchQuery(t *testing.T) {
	got, err := validate.SearchQuery("  soup ")
	require.NoError(t, err)
	assert.Equal(t, "soup", got)

	_, err = validate.SearchQuery("<script>alert(1)</script>")
	requireField(t, err, "q")
}

func requireDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
