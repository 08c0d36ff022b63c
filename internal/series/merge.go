// Package series implements the long-format store of monthly observations:
// one row per (series_id, date), merged with last-write-wins semantics on
// every refresh cycle.
package series

import (
	"sort"

	"laborpulse/pkg/contracts/domain"
)

// Merge unions existing and incoming observations. For duplicate
// (series_id, date) keys the incoming value wins, since it carries the latest
// revision from the upstream source. The result is sorted by
// (series_id, date) ascending so that persisted output is deterministic.
//
// Merge never mutates its inputs. Either argument may be empty.
func Merge(existing, incoming []domain.SeriesObservation) []domain.SeriesObservation {
	merged := make(map[domain.ObservationKey]domain.SeriesObservation, len(existing)+len(incoming))

	for _, obs := range existing {
		obs.Date = domain.MonthOf(obs.Date)
		merged[obs.Key()] = obs
	}
	for _, obs := range incoming {
		obs.Date = domain.MonthOf(obs.Date)
		merged[obs.Key()] = obs
	}

	out := make([]domain.SeriesObservation, 0, len(merged))
	for _, obs := range merged {
		out = append(out, obs)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SeriesID != out[j].SeriesID {
			return out[i].SeriesID < out[j].SeriesID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// SeriesIDs returns the distinct series identifiers present, sorted.
func SeriesIDs(observations []domain.SeriesObservation) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, obs := range observations {
		if _, ok := seen[obs.SeriesID]; !ok {
			seen[obs.SeriesID] = struct{}{}
			ids = append(ids, obs.SeriesID)
		}
	}
	sort.Strings(ids)
	return ids
}
