package skills

import (
	"strings"

	"laborpulse/pkg/contracts/domain"
)

// CSVHeaders is the column set of the persisted taxonomy table.
var CSVHeaders = []string{"skill_id", "name", "category", "alt_labels", "source"}

// altLabelSeparator delimits alt labels inside a single CSV cell.
const altLabelSeparator = "|"

// EncodeCSV converts taxonomy records to CSV records; alt labels are joined
// into one pipe-delimited cell.
func EncodeCSV(records []domain.SkillRecord) [][]string {
	out := make([][]string, 0, len(records))
	for _, rec := range records {
		out = append(out, []string{
			rec.SkillID,
			rec.Name,
			rec.Category,
			strings.Join(rec.AltLabels, altLabelSeparator),
			rec.Source,
		})
	}
	return out
}

// DecodeCSV parses CSV records into taxonomy records. Rows without a skill_id
// are dropped individually and counted.
func DecodeCSV(records [][]string) (skills []domain.SkillRecord, dropped int) {
	for _, rec := range records {
		if len(rec) < 5 || rec[0] == "" {
			dropped++
			continue
		}
		var altLabels []string
		if rec[3] != "" {
			altLabels = strings.Split(rec[3], altLabelSeparator)
		}
		skills = append(skills, domain.SkillRecord{
			SkillID:   rec[0],
			Name:      rec[1],
			Category:  rec[2],
			AltLabels: altLabels,
			Source:    rec[4],
		})
	}
	return skills, dropped
}
