package plinko

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is money in minor units (cents).
type Amount int64

// AmountFromFloat converts a decimal value to cents, rounding to the nearest cent.
func AmountFromFloat(v float64) Amount {
	return Amount(math.Round(v * 100))
}

// ParseAmount reads decimal text such as "10", "10.5" or "10.25".
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if (whole == "" && frac == "") || len(frac) > 2 || !digits(whole) || !digits(frac) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if whole == "" {
		whole = "0"
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if w > (math.MaxInt64-f)/100 {
		return 0, fmt.Errorf("%w: overflow", ErrInvalidAmount)
	}
	a := Amount(w*100 + f)
	if neg {
		a = -a
	}
	return a, nil
}

// digits reports whether s holds only ASCII digits. Signs are not digits.
func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (a Amount) Float() float64 { return float64(a) / 100 }

func (a Amount) String() string {
	sign := ""
	v := int64(a)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Payout applies a multiplier to a wager, rounding to the nearest cent.
func Payout(wager Amount, multiplier float64) Amount {
	if multiplier <= 0 || wager <= 0 {
		return 0
	}
	return Amount(math.Round(float64(wager) * multiplier))
}
