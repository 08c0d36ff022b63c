package domain

// SkillRecord is one entry of the static skills taxonomy used by the
// dashboard for role framing. Records merge by SkillID with last-write-wins
// semantics, independent of the time-series path.
type SkillRecord struct {
	SkillID   string   `json:"skill_id" db:"skill_id" validate:"required"`
	Name      string   `json:"name" db:"name"`
	Category  string   `json:"category" db:"category"`
	AltLabels []string `json:"alt_labels" db:"alt_labels"`
	Source    string   `json:"source" db:"source"`
}
