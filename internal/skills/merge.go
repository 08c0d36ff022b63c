// Package skills implements the static skills taxonomy table. It follows the
// same last-write-wins merge discipline as the series store, keyed solely on
// skill_id, and is optional end to end: an empty or absent taxonomy never
// blocks the refresh pipeline or the dashboard.
package skills

import (
	"sort"

	"laborpulse/pkg/contracts/domain"
)

// Merge unions existing and incoming records; for duplicate skill ids the
// incoming record wins. The result is sorted by (category, name) to match
// how the taxonomy is browsed.
func Merge(existing, incoming []domain.SkillRecord) []domain.SkillRecord {
	merged := make(map[string]domain.SkillRecord, len(existing)+len(incoming))
	for _, rec := range existing {
		merged[rec.SkillID] = rec
	}
	for _, rec := range incoming {
		merged[rec.SkillID] = rec
	}

	out := make([]domain.SkillRecord, 0, len(merged))
	for _, rec := range merged {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].SkillID < out[j].SkillID
	})
	return out
}
