package series

import (
	"strconv"
	"time"

	"laborpulse/pkg/contracts/domain"
)

// CSVHeaders is the column set of the persisted long table.
var CSVHeaders = []string{"series_id", "date", "value"}

const dateLayout = "2006-01-02"

// EncodeCSV converts observations to CSV records in column order
// series_id, date, value. Values round-trip exactly.
func EncodeCSV(observations []domain.SeriesObservation) [][]string {
	records := make([][]string, 0, len(observations))
	for _, obs := range observations {
		records = append(records, []string{
			obs.SeriesID,
			obs.Date.Format(dateLayout),
			strconv.FormatFloat(obs.Value, 'f', -1, 64),
		})
	}
	return records
}

// DecodeCSV parses CSV records into observations. Rows with an unparseable
// date or value are dropped individually, not the whole batch; the dropped
// count is returned so callers can log it.
func DecodeCSV(records [][]string) (observations []domain.SeriesObservation, dropped int) {
	for _, rec := range records {
		if len(rec) < 3 || rec[0] == "" {
			dropped++
			continue
		}
		date, err := time.Parse(dateLayout, rec[1])
		if err != nil {
			dropped++
			continue
		}
		value, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			dropped++
			continue
		}
		observations = append(observations, domain.SeriesObservation{
			SeriesID: rec[0],
			Date:     domain.MonthOf(date),
			Value:    value,
		})
	}
	return observations, dropped
}
