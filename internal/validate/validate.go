// Package validate converts raw user input into the domain's native types.
// Every function either returns the normalized value or a *Error naming the
// offending field.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// DateLayout is the default date format for report ranges and sales rows.
const DateLayout = "2006-01-02"

const (
	MaxNameLength         = 100
	MaxDescriptionLength  = 500
	MaxInstructionsLength = 500
	MaxNotesLength        = 500
	MaxEmailLength        = 254
	MaxTableNumberLength  = 10
	MaxQuantityInput      = 999
	MaxSearchQueryLength  = 100
)

var (
	MaxPrice   = decimal.RequireFromString("999.99")
	centsExp   = int32(2)
	taxRateExp = int32(4)
	hundred    = decimal.NewFromInt(100)
)

var (
	phonePattern      = regexp.MustCompile(`^\+?[\d\s\-()]{7,20}$`)
	phoneFormatting   = regexp.MustCompile(`[\s\-()]`)
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	tableNumberChars  = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)
	searchDenyPattern = regexp.MustCompile(`(?i)<script|javascript:|on(load|error|click)=`)
)

// ErrInvalid matches every *Error via errors.Is.
var ErrInvalid = errors.New("invalid input")

// Error reports a rejected input value.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

func newError(field, format string, args ...any) *Error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RequiredString trims value and checks its length in runes.
func RequiredString(value, field string, minLen, maxLen int) (string, error) {
	v := strings.TrimSpace(value)
	n := utf8.RuneCountInString(v)
	if n == 0 || n < minLen {
		if minLen <= 1 {
			return "", newError(field, "is required")
		}
		return "", newError(field, "must be at least %d characters long", minLen)
	}
	if n > maxLen {
		return "", newError(field, "must not exceed %d characters", maxLen)
	}
	return v, nil
}

// OptionalString trims value; empty input is allowed.
func OptionalString(value, field string, maxLen int) (string, error) {
	v := strings.TrimSpace(value)
	if utf8.RuneCountInString(v) > maxLen {
		return "", newError(field, "must not exceed %d characters", maxLen)
	}
	return v, nil
}

// Price parses a user-entered price such as "$1,234.50" or "15.99".
func Price(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return decimal.Zero, newError("price", "is required")
	}
	v = strings.NewReplacer("$", "", ",", "").Replace(v)
	d, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Zero, newError("price", "invalid price format")
	}
	return CheckPrice("price", d)
}

// CheckPrice range-checks an already parsed amount and quantizes it to cents.
func CheckPrice(field string, d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, newError(field, "cannot be negative")
	}
	d = d.RoundBank(centsExp)
	if d.GreaterThan(MaxPrice) {
		return decimal.Zero, newError(field, "cannot exceed %s", MaxPrice.StringFixed(centsExp))
	}
	return d, nil
}

// Quantity parses a positive whole number no larger than MaxQuantityInput.
func Quantity(raw string) (int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, newError("quantity", "is required")
	}
	q, err := strconv.Atoi(v)
	if err != nil {
		return 0, newError("quantity", "invalid quantity format")
	}
	if q <= 0 {
		return 0, newError("quantity", "must be positive")
	}
	if q > MaxQuantityInput {
		return 0, newError("quantity", "cannot exceed %d", MaxQuantityInput)
	}
	return q, nil
}

// Phone validates a phone number and returns it with its original formatting.
func Phone(raw string, required bool) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		if required {
			return "", newError("customer_phone", "is required")
		}
		return "", nil
	}
	if !phonePattern.MatchString(phone) {
		return "", newError("customer_phone", "invalid phone number format")
	}
	digits := phoneFormatting.ReplaceAllString(phone, "")
	digits = strings.TrimPrefix(digits, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return "", newError("customer_phone", "must be between 7 and 15 digits")
	}
	return phone, nil
}

// Email validates and lower-cases an email address.
func Email(raw string, required bool) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		if required {
			return "", newError("email", "is required")
		}
		return "", nil
	}
	if len(email) > MaxEmailLength {
		return "", newError("email", "is too long")
	}
	if !emailPattern.MatchString(email) {
		return "", newError("email", "invalid email address format")
	}
	return email, nil
}

// TableNumber upper-cases a table label; empty means no table.
func TableNumber(raw string) (string, error) {
	table := strings.ToUpper(strings.TrimSpace(raw))
	if table == "" {
		return "", nil
	}
	if !tableNumberChars.MatchString(table) {
		return "", newError("table_number", "can only contain letters, numbers, spaces, hyphens, and underscores")
	}
	if utf8.RuneCountInString(table) > MaxTableNumberLength {
		return "", newError("table_number", "cannot exceed %d characters", MaxTableNumberLength)
	}
	return table, nil
}

// Category matches raw case-insensitively against valid and returns it lower-cased.
func Category(raw string, valid []string) (string, error) {
	category := strings.ToLower(strings.TrimSpace(raw))
	if category == "" {
		return "", newError("category", "is required")
	}
	for _, c := range valid {
		if strings.ToLower(c) == category {
			return category, nil
		}
	}
	return "", newError("category", "must be one of: %s", strings.Join(valid, ", "))
}

// TaxRate accepts "0.08", "8", or "8%" and returns a fraction with 4 decimal places.
func TaxRate(raw string) (decimal.Decimal, error) {
	v := strings.TrimSpace(strings.ReplaceAll(raw, "%", ""))
	if v == "" {
		return decimal.Zero, newError("tax_rate", "is required")
	}
	rate, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, newError("tax_rate", "invalid tax rate format")
	}
	return CheckTaxRate(rate)
}

// CheckTaxRate normalizes a parsed rate: values above 1 are read as percentages.
func CheckTaxRate(rate decimal.Decimal) (decimal.Decimal, error) {
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		rate = rate.Div(hundred)
	}
	if rate.IsNegative() {
		return decimal.Zero, newError("tax_rate", "cannot be negative")
	}
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, newError("tax_rate", "cannot exceed 100%%")
	}
	return rate.RoundBank(taxRateExp), nil
}

// Date parses value with layout (DateLayout when empty).
func Date(raw, field, layout string) (time.Time, error) {
	if layout == "" {
		layout = DateLayout
	}
	v := strings.TrimSpace(raw)
	if v == "" {
		return time.Time{}, newError(field, "is required")
	}
	t, err := time.Parse(layout, v)
	if err != nil {
		return time.Time{}, newError(field, "invalid date format, expected %s", layout)
	}
	return t, nil
}

// DateRange parses optional start and end dates. A missing bound is returned
// as the zero time.
func DateRange(start, end, layout string) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error
	if strings.TrimSpace(start) != "" {
		if from, err = Date(start, "start_date", layout); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if strings.TrimSpace(end) != "" {
		if to, err = Date(end, "end_date", layout); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, newError("start_date", "cannot be after end date")
	}
	return from, to, nil
}

// SearchQuery trims a free-text catalog search. An empty query is allowed.
func SearchQuery(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", nil
	}
	if utf8.RuneCountInString(q) > MaxSearchQueryLength {
		return "", newError("q", "cannot exceed %d characters", MaxSearchQueryLength)
	}
	if searchDenyPattern.MatchString(q) {
		return "", newError("q", "contains invalid characters")
	}
	return q, nil
}
