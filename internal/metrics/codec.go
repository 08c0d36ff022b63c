package metrics

import (
	"strconv"
	"time"

	"laborpulse/pkg/contracts/domain"
)

// CSVHeaders is the column set of the persisted wide table. Order matters:
// encode and decode both follow it.
var CSVHeaders = []string{
	"date",
	"unemp_rate",
	"openings_index",
	"hires_index",
	"quits_index",
	"cpi_index",
	"real_openings_index",
	"yoy_openings",
	"yoy_unrate",
}

const dateLayout = "2006-01-02"

// EncodeCSV converts metrics rows to CSV records. Nil metrics become empty
// cells; consumers must treat an empty cell as "no data", never as zero.
func EncodeCSV(rows []domain.MetricsRow) [][]string {
	records := make([][]string, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		records = append(records, []string{
			row.Date.Format(dateLayout),
			formatNullable(row.UnempRate),
			formatNullable(row.OpeningsIndex),
			formatNullable(row.HiresIndex),
			formatNullable(row.QuitsIndex),
			formatNullable(row.CPIIndex),
			formatNullable(row.RealOpeningsIndex),
			formatNullable(row.YoYOpenings),
			formatNullable(row.YoYUnempRate),
		})
	}
	return records
}

// DecodeCSV parses persisted wide-table records back into rows. Records with
// an unparseable date are dropped and counted; unparseable metric cells
// decode as nil.
func DecodeCSV(records [][]string) (rows []domain.MetricsRow, dropped int) {
	for _, rec := range records {
		if len(rec) < len(CSVHeaders) {
			dropped++
			continue
		}
		date, err := time.Parse(dateLayout, rec[0])
		if err != nil {
			dropped++
			continue
		}
		rows = append(rows, domain.MetricsRow{
			Date:              domain.MonthOf(date),
			UnempRate:         parseNullable(rec[1]),
			OpeningsIndex:     parseNullable(rec[2]),
			HiresIndex:        parseNullable(rec[3]),
			QuitsIndex:        parseNullable(rec[4]),
			CPIIndex:          parseNullable(rec[5]),
			RealOpeningsIndex: parseNullable(rec[6]),
			YoYOpenings:       parseNullable(rec[7]),
			YoYUnempRate:      parseNullable(rec[8]),
		})
	}
	return rows, dropped
}

func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseNullable(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return domain.Float(v)
}
