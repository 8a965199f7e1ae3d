package mastery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/mastery"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

func setup(t *testing.T) mastery.ServiceInterface {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return mastery.NewService(inmemdb.NewMasteryRepository(db))
}

func Test_service_UpdateMastery_lazyCreate(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	// first update creates the record at the default score
	m, err := svc.UpdateMastery(ctx, mastery.UpdateMastery{UserID: "u1", Topic: "algebra", ScoreDelta: 10})
	require.NoError(t, err)
	assert.Equal(t, 60, m.Score) // 50 + 10
	assert.Equal(t, mastery.DefaultConfidence, m.Confidence)
	assert.NotEmpty(t, m.ID)

	// subsequent update applies to the existing record
	m, err = svc.UpdateMastery(ctx, mastery.UpdateMastery{UserID: "u1", Topic: "algebra", ScoreDelta: -25})
	require.NoError(t, err)
	assert.Equal(t, 35, m.Score)

	recs, err := svc.QueryByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func Test_service_UpdateMastery_clamps(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		delta int
		want  int
	}{
		{"huge positive delta clamps to max", 1000, mastery.MaxScore},
		{"huge negative delta clamps to min", -1000, mastery.MinScore},
		{"zero delta keeps default", 0, mastery.DefaultScore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := svc.UpdateMastery(ctx, mastery.UpdateMastery{UserID: "u1", Topic: tt.name, ScoreDelta: tt.delta})
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Score)
			assert.GreaterOrEqual(t, m.Score, mastery.MinScore)
			assert.LessOrEqual(t, m.Score, mastery.MaxScore)
		})
	}
}

func Test_service_GetProgress_createsDefault(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	p, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 0, p.XP)
	assert.NotEmpty(t, p.ID)

	// idempotent: same record on the second read
	p2, err := svc.GetProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, p2.ID)
}

func Test_service_UpdateProgress_xpWraps(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	p, err := svc.UpdateProgress(ctx, mastery.UpdateProgress{UserID: "u1", XPDelta: 60})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 60, p.XP)

	// 60 + 70 = 130 -> level 2, 30 XP left over
	p, err = svc.UpdateProgress(ctx, mastery.UpdateProgress{UserID: "u1", XPDelta: 70})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Level)
	assert.Equal(t, 30, p.XP)

	// big delta wraps multiple levels at once
	p, err = svc.UpdateProgress(ctx, mastery.UpdateProgress{UserID: "u1", XPDelta: 250})
	require.NoError(t, err)
	assert.Equal(t, 4, p.Level)
	assert.Equal(t, 80, p.XP)
}

func Test_service_UpdateProgress_levelMonotonic(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	prevLevel := 0
	for _, delta := range []int{0, 10, 99, 100, 1, 0, 300} {
		p, err := svc.UpdateProgress(ctx, mastery.UpdateProgress{UserID: "u1", XPDelta: delta})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.Level, prevLevel)
		assert.Less(t, p.XP, mastery.XPPerLevel)
		prevLevel = p.Level
	}
}
