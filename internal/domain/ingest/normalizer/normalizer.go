// Package normalizer converts heterogeneous spreadsheet cell values into
// canonical amounts and dates. Exports mix native dates, numeric date
// serials, ISO strings and pt-BR formats in the same column; everything is
// funneled into decimal amounts and DD/MM/YYYY strings here so the rest of
// the pipeline never sees raw cells.
package normalizer

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/financecore/finance-core/pkg/money"
)

// MissingDate is the sentinel returned for absent date cells.
const MissingDate = "N/A"

// Spreadsheet date serials count days from an epoch 25569 days before the
// Unix epoch. Serials outside (20000, 60000) are treated as plain numbers,
// not dates.
const (
	serialEpochOffsetDays = 25569
	serialMin             = 20000
	serialMax             = 60000
)

var (
	isoDatePattern   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	slashDatePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}`)
)

// ParseCurrency converts a raw amount cell into a decimal value. Unparseable
// input is a soft failure yielding zero, never an error.
func ParseCurrency(raw string) decimal.Decimal {
	return money.Parse(raw)
}

// NormalizeDate converts a cell value into the canonical DD/MM/YYYY form.
// It accepts native time values, spreadsheet serials (as numbers or numeric
// strings), ISO YYYY-MM-DD strings and D/M/YYYY-ish strings. Absent values
// yield MissingDate; anything unrecognized is returned as its trimmed string
// form unchanged.
func NormalizeDate(value any) string {
	if value == nil {
		return MissingDate
	}

	if t, ok := value.(time.Time); ok {
		if t.IsZero() {
			return MissingDate
		}
		return formatDay(t.UTC())
	}

	var str string
	switch v := value.(type) {
	case float64:
		if v == 0 {
			return MissingDate
		}
		if t, ok := fromSerial(v); ok {
			return formatDay(t)
		}
		str = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return MissingDate
		}
		if t, ok := fromSerial(float64(v)); ok {
			return formatDay(t)
		}
		str = strconv.Itoa(v)
	case string:
		str = v
	default:
		str = fmt.Sprint(v)
	}

	str = strings.TrimSpace(str)
	if str == "" {
		return MissingDate
	}

	if n, err := strconv.ParseFloat(str, 64); err == nil {
		if t, ok := fromSerial(n); ok {
			return formatDay(t)
		}
	}

	if isoDatePattern.MatchString(str) {
		parts := strings.SplitN(str[:10], "-", 3)
		return parts[2] + "/" + parts[1] + "/" + parts[0]
	}

	if slashDatePattern.MatchString(str) {
		parts := strings.SplitN(str, "/", 3)
		return pad2(parts[0]) + "/" + pad2(parts[1]) + "/" + parts[2][:4]
	}

	return str
}

func fromSerial(n float64) (time.Time, bool) {
	if n <= serialMin || n >= serialMax {
		return time.Time{}, false
	}
	seconds := math.Round((n - serialEpochOffsetDays) * 86400)
	return time.Unix(int64(seconds), 0).UTC(), true
}

func formatDay(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
