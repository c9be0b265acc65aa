// File: decfmt.go
// Title: Decimal Pattern Formatting
// Description: Formats numbers with DecimalFormat-style patterns such as
//              "0.000", "#,##0.00" or "0.0%". Supported: required (0) and
//              optional (#) digits, one grouping size, a literal prefix and
//              suffix, percent scaling and an optional negative subpattern.
//              Rounding is half-even on the exact binary value.
// Author: frle10
// Version: v0.1.0
// Created: 2026-10-15
// Modified: 2026-10-15
//
// Change History:
// - 2026-10-15 v0.1.0: Initial pattern formatter

package executor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// decimalPattern is a parsed positive (and optional negative) pattern
type decimalPattern struct {
	prefix, suffix       string
	negPrefix, negSuffix string
	minInt               int
	minFrac, maxFrac     int
	grouping             int
	multiplier           float64
}

func isPatternChar(r byte) bool {
	return r == '0' || r == '#' || r == ',' || r == '.'
}

// parseDecimalPattern parses pattern; the negative subpattern after ';'
// contributes only its prefix and suffix
func parseDecimalPattern(pattern string) (*decimalPattern, error) {
	positive, negative, hasNegative := strings.Cut(pattern, ";")

	prefix, body, suffix, err := splitPattern(positive)
	if err != nil {
		return nil, err
	}

	p := &decimalPattern{
		prefix:     prefix,
		suffix:     suffix,
		negPrefix:  "-" + prefix,
		negSuffix:  suffix,
		multiplier: 1,
	}
	if strings.Contains(prefix+suffix, "%") {
		p.multiplier = 100
	}

	if hasNegative {
		np, _, ns, err := splitPattern(negative)
		if err != nil {
			return nil, fmt.Errorf("negative subpattern: %w", err)
		}
		p.negPrefix, p.negSuffix = np, ns
	}

	intPart, fracPart, hasFrac := strings.Cut(body, ".")
	if hasFrac && strings.ContainsAny(fracPart, ".,") {
		return nil, fmt.Errorf("misplaced separator in %q", body)
	}

	if i := strings.LastIndexByte(intPart, ','); i >= 0 {
		p.grouping = len(intPart) - i - 1
		if p.grouping == 0 {
			return nil, fmt.Errorf("empty grouping in %q", body)
		}
	}
	p.minInt = strings.Count(intPart, "0")

	optional := false
	for i := 0; i < len(fracPart); i++ {
		switch fracPart[i] {
		case '0':
			if optional {
				return nil, fmt.Errorf("'0' after '#' in fraction of %q", body)
			}
			p.minFrac++
		case '#':
			optional = true
		}
		p.maxFrac++
	}
	return p, nil
}

// splitPattern separates literal prefix, numeric body and literal suffix
func splitPattern(pattern string) (string, string, string, error) {
	start := strings.IndexFunc(pattern, func(r rune) bool {
		return r < 0x80 && isPatternChar(byte(r))
	})
	if start < 0 {
		return "", "", "", fmt.Errorf("pattern %q has no digits", pattern)
	}
	end := start
	for end < len(pattern) && isPatternChar(pattern[end]) {
		end++
	}
	body := pattern[start:end]
	if !strings.ContainsAny(body, "0#") {
		return "", "", "", fmt.Errorf("pattern %q has no digits", pattern)
	}
	return pattern[:start], body, pattern[end:], nil
}

// format renders f using the pattern
func (p *decimalPattern) format(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}

	f *= p.multiplier
	negative := math.Signbit(f)
	abs := math.Abs(f)

	var digits string
	if math.IsInf(abs, 0) {
		digits = "∞"
	} else {
		digits = p.formatDigits(abs)
		if negative && strings.Trim(digits, "0.,") == "" {
			negative = false
		}
	}

	if negative {
		return p.negPrefix + digits + p.negSuffix
	}
	return p.prefix + digits + p.suffix
}

func (p *decimalPattern) formatDigits(abs float64) string {
	rounded := strconv.FormatFloat(abs, 'f', p.maxFrac, 64)
	intDigits, frac, _ := strings.Cut(rounded, ".")

	for len(frac) > p.minFrac && frac[len(frac)-1] == '0' {
		frac = frac[:len(frac)-1]
	}

	intDigits = strings.TrimLeft(intDigits, "0")
	if len(intDigits) < p.minInt {
		intDigits = strings.Repeat("0", p.minInt-len(intDigits)) + intDigits
	}
	if p.grouping > 0 {
		intDigits = group(intDigits, p.grouping)
	}

	switch {
	case frac != "":
		return intDigits + "." + frac
	case intDigits == "":
		return "0"
	default:
		return intDigits
	}
}

// group inserts ',' every size digits from the right
func group(digits string, size int) string {
	if len(digits) <= size {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % size
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += size {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+size])
	}
	return b.String()
}

// FormatDecimal formats v with a DecimalFormat-style pattern
func FormatDecimal(v Value, pattern string) (string, error) {
	f, err := v.Float()
	if err != nil {
		return "", err
	}
	p, err := parseDecimalPattern(pattern)
	if err != nil {
		return "", Errorf(ErrBadArgument, "decfmt: %v", err)
	}
	return p.format(f), nil
}
