// Package numbering renders issued voucher numbers for display. Numbers are
// stored as plain integers; formatting is presentation only.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a voucher number as PREFIX-FISCALYEAR-NNNNN, e.g.
// "JV-2026-00042". The numeric part is zero padded to five digits but grows
// beyond that without truncation.
func Format(prefix string, fiscalYear int, number int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, fiscalYear, number)
}

// Parse splits a formatted voucher number back into its parts. It accepts
// prefixes containing dashes by splitting from the right.
func Parse(formatted string) (prefix string, fiscalYear int, number int64, err error) {
	idx := strings.LastIndex(formatted, "-")
	if idx <= 0 {
		return "", 0, 0, fmt.Errorf("malformed voucher number %q", formatted)
	}
	number, err = strconv.ParseInt(formatted[idx+1:], 10, 64)
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed voucher number %q: %w", formatted, err)
	}

	rest := formatted[:idx]
	idx = strings.LastIndex(rest, "-")
	if idx <= 0 {
		return "", 0, 0, fmt.Errorf("malformed voucher number %q", formatted)
	}
	fiscalYear, err = strconv.Atoi(rest[idx+1:])
	if err != nil {
		return "", 0, 0, fmt.Errorf("malformed voucher number %q: %w", formatted, err)
	}

	return rest[:idx], fiscalYear, number, nil
}
