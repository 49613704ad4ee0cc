package domain

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	priceMaxDigits     = 5
	priceDecimalPlaces = 2
)

// Price — цена в копейках (центах). Хранится как NUMERIC(5,2),
// в JSON передается строкой "5.00".
type Price int64

// ParsePrice разбирает десятичную запись цены
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, FieldError("price", "a valid number is required")
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return 0, FieldError("price", "a valid number is required")
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return 0, FieldError("price", "a valid number is required")
	}

	intPart = strings.TrimLeft(intPart, "0")
	fracPart = strings.TrimRight(fracPart, "0")
	if len(fracPart) > priceDecimalPlaces {
		return 0, FieldError("price", fmt.Sprintf("ensure that there are no more than %d decimal places", priceDecimalPlaces))
	}
	if len(intPart) > priceMaxDigits-priceDecimalPlaces {
		return 0, FieldError("price", fmt.Sprintf("ensure that there are no more than %d digits in total", priceMaxDigits))
	}

	for len(fracPart) < priceDecimalPlaces {
		fracPart += "0"
	}
	cents, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return 0, FieldError("price", "a valid number is required")
	}
	if neg {
		cents = -cents
	}
	return Price(cents), nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (p Price) String() string {
	cents := int64(p)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// MarshalJSON отдает цену строкой, как десятичное поле
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(p.String())), nil
}

// UnmarshalJSON принимает и строку, и числовой литерал
func (p *Price) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return FieldError("price", "this field may not be null")
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Scan читает NUMERIC из Postgres ([]byte) и из SQLite (float64/int64)
func (p *Price) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = 0
		return nil
	case []byte:
		return p.scanString(string(v))
	case string:
		return p.scanString(v)
	case int64:
		*p = Price(v * 100)
		return nil
	case float64:
		*p = Price(math.Round(v * 100))
		return nil
	default:
		return fmt.Errorf("unsupported price type %T", src)
	}
}

func (p *Price) scanString(s string) error {
	v, err := ParsePrice(s)
	if err != nil {
		return fmt.Errorf("scan price %q: %w", s, err)
	}
	*p = v
	return nil
}

func (p Price) Value() (driver.Value, error) {
	return p.String(), nil
}
