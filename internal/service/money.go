package service

import (
	"math"
	"strconv"
	"strings"
)

// ToMinorUnits converts a decimal currency amount to integer minor units by
// multiplying by 100 and truncating. Plain decimals are converted digit by
// digit so "49.99" yields exactly 4999.
func ToMinorUnits(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, invalidField("price", "price is required")
	}

	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, invalidField("price", "price must be a non-negative number")
		}
		return int64(math.Trunc(f * 100)), nil
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || !allDigits(whole) || !allDigits(frac) {
		return 0, invalidField("price", "price must be a non-negative number")
	}
	frac = (frac + "00")[:2]

	n, err := strconv.ParseInt(whole+frac, 10, 64)
	if err != nil {
		return 0, invalidField("price", "price is out of range")
	}
	return n, nil
}

// MaxPrice is the exclusive upper bound of a stored price or payment amount,
// the first value that no longer fits NUMERIC(10, 2).
const MaxPrice = 1e8

// ParsePrice parses a non-negative decimal price below MaxPrice once rounded
// to cents.
func ParsePrice(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, invalidField("price", "price must be a non-negative number")
	}
	if math.Round(f*100) >= MaxPrice*100 {
		return 0, invalidField("price", "price must be less than 100000000")
	}
	return f, nil
}

// ParseSeats parses a seat count. Whole-valued decimals such as "12.0" are accepted.
func ParseSeats(raw string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, invalidField("available_seats", "available_seats must be a non-negative whole number")
	}
	return int(f), nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
