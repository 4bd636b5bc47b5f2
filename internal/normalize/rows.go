package normalize

import (
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/joshsymonds/driveloader/internal/drive"
)

// BookkeepingPrefix marks row keys added by the Sheets adapter.
const BookkeepingPrefix = "_"

// CleanRows normalizes every row, preserving order.
func CleanRows(rows []drive.RawRow) []drive.RowObject {
	out := make([]drive.RowObject, 0, len(rows))
	for _, row := range rows {
		out = append(out, CleanRow(row))
	}
	return out
}

// CleanRow drops bookkeeping keys, camel-cases column headers and coerces
// each cell with Coerce. Headers are visited in sorted order; when several
// camel-case to the same key the first keeps it and the rest get "_2", "_3"
// and so on. CamelCase never emits an underscore, so suffixed keys cannot
// clash with a real header.
func CleanRow(row drive.RawRow) drive.RowObject {
	kept := lo.OmitBy(row, func(key, _ string) bool {
		return strings.HasPrefix(key, BookkeepingPrefix)
	})
	headers := lo.Keys(kept)
	slices.Sort(headers)

	out := make(drive.RowObject, len(headers))
	for _, header := range headers {
		base := CamelCase(header)
		key := base
		for n := 2; ; n++ {
			if _, taken := out[key]; !taken {
				break
			}
			key = base + "_" + strconv.Itoa(n)
		}
		out[key] = Coerce(kept[header])
	}
	return out
}

// Coerce types a Sheets cell, which always arrives as a formatted string.
// Precedence:
//  1. "" is nil
//  2. "TRUE" and "FALSE" are booleans
//  3. digits with thousands commas and at most one decimal point are float64
//  4. anything else is returned unchanged
func Coerce(val string) any {
	if val == "" {
		return nil
	}
	switch val {
	case "TRUE":
		return true
	case "FALSE":
		return false
	}
	if looksNumeric(val) {
		if n, err := strconv.ParseFloat(strings.ReplaceAll(val, ",", ""), 64); err == nil {
			return n
		}
	}
	return val
}

// looksNumeric reports whether s is only digits, commas and a single optional
// decimal point, with at least one digit.
func looksNumeric(s string) bool {
	digits, points := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ',':
		case r == '.':
			points++
		default:
			return false
		}
	}
	return digits > 0 && points <= 1
}

var apostrophes = strings.NewReplacer("'", "", "’", "")

// CamelCase converts a column header into a lower camel case key:
// "First Name" -> "firstName", "HTTP status" -> "httpStatus". Apostrophes are
// removed before splitting so "don't" becomes "dont".
func CamelCase(s string) string {
	return lo.CamelCase(apostrophes.Replace(s))
}
