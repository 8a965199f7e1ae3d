package mastery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound         = errors.New("mastery record not found")
	ErrProgressNotFound = errors.New("progress record not found")
)

type (
	Repository interface {
		GetMastery(ctx context.Context, userID, topic string) (Mastery, error)
		QueryMasteryByUser(ctx context.Context, userID string) ([]Mastery, error)
		UpsertMastery(ctx context.Context, m Mastery) (Mastery, error)

		GetProgressByUser(ctx context.Context, userID string) (Progress, error)
		UpsertProgress(ctx context.Context, p Progress) (Progress, error)
	}

	ServiceInterface interface {
		QueryByUser(ctx context.Context, userID string) ([]Mastery, error)
		UpdateMastery(ctx context.Context, um UpdateMastery) (Mastery, error)
		GetProgress(ctx context.Context, userID string) (Progress, error)
		UpdateProgress(ctx context.Context, up UpdateProgress) (Progress, error)
	}

	service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*service)(nil)

func NewService(repo Repository) ServiceInterface {
	return &service{repo: repo}
}

func (svc *service) QueryByUser(ctx context.Context, userID string) ([]Mastery, error) {
	return svc.repo.QueryMasteryByUser(ctx, userID)
}

// UpdateMastery applies a clamped score delta, lazily creating the record at
// the default score on first update.
func (svc *service) UpdateMastery(ctx context.Context, um UpdateMastery) (Mastery, error) {
	now := time.Now().UTC()
	m, err := svc.repo.GetMastery(ctx, um.UserID, um.Topic)
	if err != nil {
		if err != ErrNotFound {
			return Mastery{}, err
		}
		m = Mastery{
			ID:         uuid.New().String(),
			UserID:     um.UserID,
			Topic:      um.Topic,
			Score:      DefaultScore,
			Confidence: DefaultConfidence,
		}
	}
	m.ApplyDelta(um.ScoreDelta, now)
	return svc.repo.UpsertMastery(ctx, m)
}

// GetProgress returns the user's progress, creating the default record when
// none exists yet.
func (svc *service) GetProgress(ctx context.Context, userID string) (Progress, error) {
	p, err := svc.repo.GetProgressByUser(ctx, userID)
	if err != nil {
		if err != ErrProgressNotFound {
			return Progress{}, err
		}
		return svc.repo.UpsertProgress(ctx, newProgress(userID))
	}
	return p, nil
}

func (svc *service) UpdateProgress(ctx context.Context, up UpdateProgress) (Progress, error) {
	now := time.Now().UTC()
	p, err := svc.repo.GetProgressByUser(ctx, up.UserID)
	if err != nil {
		if err != ErrProgressNotFound {
			return Progress{}, err
		}
		p = newProgress(up.UserID)
	}
	p.ApplyXP(up.XPDelta, now)
	return svc.repo.UpsertProgress(ctx, p)
}

func newProgress(userID string) Progress {
	return Progress{
		ID:             uuid.New().String(),
		UserID:         userID,
		Level:          1,
		XP:             0,
		LastActiveDate: time.Now().UTC(),
		Goals:          []Goal{},
		Challenges:     []Challenge{},
	}
}
