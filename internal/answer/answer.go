// Package answer parses the loosely formatted numeric answers that appear
// in generated problems and simulated student work.
package answer

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberRe   = regexp.MustCompile(`[-+]?[0-9]*\.?[0-9]+`)
	fractionRe = regexp.MustCompile(`^\s*(-?\d+)\s*/\s*(-?\d+)\s*$`)
	nonNumRe   = regexp.MustCompile(`[^0-9.-]`)
)

// Numbers returns every number token in text, in order.
func Numbers(text string) []string {
	return numberRe.FindAllString(text, -1)
}

// ParseNumericLike interprets s as a plain number, an "a/b" fraction, an
// "N%" percentage, or failing those the last number found in the text.
//
//	"3/4"              -> 0.75
//	"20%"              -> 0.2
//	"the answer is 42" -> 42
func ParseNumericLike(s string) (float64, bool) {
	if f, ok := parseFloat(s); ok {
		return f, true
	}
	if f, ok := parseFraction(s); ok {
		return f, true
	}
	if f, ok := parsePercent(s); ok {
		return f, true
	}
	nums := Numbers(s)
	if len(nums) == 0 {
		return 0, false
	}
	return parseFloat(nums[len(nums)-1])
}

// Equivalent reports whether two answers name the same value. Numeric
// answers, including fractions, percentages and numbers decorated with
// units or currency, match within max(1e-6, 0.5% of b). Anything else is
// compared as trimmed, case-insensitive text.
func Equivalent(a, b string) bool {
	an, aok := parseStripped(a)
	bn, bok := parseStripped(b)
	if aok && bok {
		tol := math.Max(1e-6, 0.005*math.Abs(bn))
		return math.Abs(an-bn) <= tol
	}
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Format renders a parsed value the way answers are echoed in reports.
func Format(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// parseStripped tries fractions and percentages, then drops every
// character that cannot be part of a number and parses what is left.
func parseStripped(s string) (float64, bool) {
	if f, ok := parseFraction(s); ok {
		return f, true
	}
	if f, ok := parsePercent(s); ok {
		return f, true
	}
	return parseFloat(nonNumRe.ReplaceAllString(s, ""))
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseFraction parses "a/b" with integer parts. A zero denominator is
// not a fraction.
func parseFraction(s string) (float64, bool) {
	m := fractionRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	num, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	den, err := strconv.ParseFloat(m[2], 64)
	if err != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}

func parsePercent(s string) (float64, bool) {
	st := strings.TrimSpace(s)
	if !strings.HasSuffix(st, "%") {
		return 0, false
	}
	f, ok := parseFloat(nonNumRe.ReplaceAllString(st[:len(st)-1], ""))
	if !ok {
		return 0, false
	}
	return f / 100, true
}
