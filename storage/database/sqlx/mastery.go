package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/mastery"
)

type masteryRepository struct {
	db *sqlx.DB
}

var _ mastery.Repository = (*masteryRepository)(nil)

func NewMasteryRepository(db *sqlx.DB) mastery.Repository {
	return &masteryRepository{db: db}
}

type (
	masteryRow struct {
		ID          string    `db:"id"`
		UserID      string    `db:"user_id"`
		Topic       string    `db:"topic"`
		Score       int       `db:"score"`
		Confidence  float64   `db:"confidence"`
		LastUpdated time.Time `db:"last_updated"`
	}

	progressRow struct {
		ID             string    `db:"id"`
		UserID         string    `db:"user_id"`
		Level          int       `db:"level"`
		XP             int       `db:"xp"`
		Streak         int       `db:"streak"`
		LastActiveDate time.Time `db:"last_active_date"`
		Goals          []byte    `db:"goals"`
		Challenges     []byte    `db:"challenges"`
	}
)

func (r masteryRow) toMastery() mastery.Mastery {
	return mastery.Mastery{
		ID:          r.ID,
		UserID:      r.UserID,
		Topic:       r.Topic,
		Score:       r.Score,
		Confidence:  r.Confidence,
		LastUpdated: r.LastUpdated,
	}
}

func (r progressRow) toProgress() (mastery.Progress, error) {
	p := mastery.Progress{
		ID:             r.ID,
		UserID:         r.UserID,
		Level:          r.Level,
		XP:             r.XP,
		Streak:         r.Streak,
		LastActiveDate: r.LastActiveDate,
		Goals:          []mastery.Goal{},
		Challenges:     []mastery.Challenge{},
	}
	if err := fromJSON(r.Goals, &p.Goals); err != nil {
		return mastery.Progress{}, errors.Wrap(err, "decoding goals")
	}
	if err := fromJSON(r.Challenges, &p.Challenges); err != nil {
		return mastery.Progress{}, errors.Wrap(err, "decoding challenges")
	}
	return p, nil
}

func (repo *masteryRepository) GetMastery(ctx context.Context, userID, topic string) (mastery.Mastery, error) {
	var row masteryRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM mastery WHERE user_id = $1 AND topic = $2`, userID, topic)
	if err != nil {
		if err == sql.ErrNoRows {
			return mastery.Mastery{}, mastery.ErrNotFound
		}
		return mastery.Mastery{}, errors.Wrap(err, "getting mastery")
	}
	return row.toMastery(), nil
}

func (repo *masteryRepository) QueryMasteryByUser(ctx context.Context, userID string) ([]mastery.Mastery, error) {
	var rows []masteryRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM mastery WHERE user_id = $1 ORDER BY topic`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying mastery by user")
	}
	records := make([]mastery.Mastery, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toMastery())
	}
	return records, nil
}

func (repo *masteryRepository) UpsertMastery(ctx context.Context, m mastery.Mastery) (mastery.Mastery, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO mastery (id, user_id, topic, score, confidence, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, topic)
		 DO UPDATE SET score = EXCLUDED.score, confidence = EXCLUDED.confidence, last_updated = EXCLUDED.last_updated`,
		m.ID, m.UserID, m.Topic, m.Score, m.Confidence, m.LastUpdated,
	)
	if err != nil {
		return mastery.Mastery{}, errors.Wrap(err, "upserting mastery")
	}
	return m, nil
}

func (repo *masteryRepository) GetProgressByUser(ctx context.Context, userID string) (mastery.Progress, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM progress WHERE user_id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return mastery.Progress{}, mastery.ErrProgressNotFound
		}
		return mastery.Progress{}, errors.Wrap(err, "getting progress")
	}
	return row.toProgress()
}

func (repo *masteryRepository) UpsertProgress(ctx context.Context, p mastery.Progress) (mastery.Progress, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO progress (id, user_id, level, xp, streak, last_active_date, goals, challenges)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (user_id)
		 DO UPDATE SET level = EXCLUDED.level, xp = EXCLUDED.xp, streak = EXCLUDED.streak,
		               last_active_date = EXCLUDED.last_active_date, goals = EXCLUDED.goals, challenges = EXCLUDED.challenges`,
		p.ID, p.UserID, p.Level, p.XP, p.Streak, p.LastActiveDate, mustJSON(p.Goals), mustJSON(p.Challenges),
	)
	if err != nil {
		return mastery.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return p, nil
}
