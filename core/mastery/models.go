package mastery

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

const (
	// defaults applied when a record is lazily created on first update
	DefaultScore      = 50
	DefaultConfidence = 0.5

	MinScore = 0
	MaxScore = 100

	// XPPerLevel is how much accumulated XP advances the level by one;
	// leftover XP wraps via modulo.
	XPPerLevel = 100
)

type (
	// Mastery is a per-(user, topic) proficiency score in [0,100].
	Mastery struct {
		ID          string    `json:"id"`
		UserID      string    `json:"user_id"`
		Topic       string    `json:"topic"`
		Score       int       `json:"score"`
		Confidence  float64   `json:"confidence"`
		LastUpdated time.Time `json:"last_updated"` // UTC
	}

	Goal struct {
		Text      string `json:"text"`
		Completed bool   `json:"completed"`
	}

	Challenge struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}

	// Progress is the per-user XP/level record; one per user.
	Progress struct {
		ID             string      `json:"id"`
		UserID         string      `json:"user_id"`
		Level          int         `json:"level"`
		XP             int         `json:"xp"`
		Streak         int         `json:"streak"`
		LastActiveDate time.Time   `json:"last_active_date"` // UTC
		Goals          []Goal      `json:"goals"`
		Challenges     []Challenge `json:"challenges"`
	}
)

// ApplyDelta adds delta to the score, clamped to [0,100], and stamps
// LastUpdated.
func (m *Mastery) ApplyDelta(delta int, now time.Time) {
	m.Score += delta
	if m.Score < MinScore {
		m.Score = MinScore
	} else if m.Score > MaxScore {
		m.Score = MaxScore
	}
	m.LastUpdated = now
}

// ApplyXP adds xp and wraps every accumulated 100 XP into a level.
func (p *Progress) ApplyXP(xp int, now time.Time) {
	p.XP += xp
	if p.XP >= XPPerLevel {
		p.Level += p.XP / XPPerLevel
		p.XP %= XPPerLevel
	}
	p.LastActiveDate = now
}

// UpdateMastery contains a score delta to apply to a (user, topic) pair.
type UpdateMastery struct {
	UserID     string `json:"user_id" validate:"required"`
	Topic      string `json:"topic" validate:"required"`
	ScoreDelta int    `json:"score_delta"`
}

func (um *UpdateMastery) Validate(validate *validator.Validate) error {
	um.Topic = core.CleanString(um.Topic)
	return validate.Struct(um)
}

// UpdateProgress contains an XP delta to apply to a user's progress.
type UpdateProgress struct {
	UserID  string `json:"user_id" validate:"required"`
	XPDelta int    `json:"xp_delta" validate:"min=0"`
}

func (up *UpdateProgress) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}
