package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/darasa/core/mastery"
)

type masteryRepository struct {
	mst  *masteryTable
	prog *progressTable
}

var _ mastery.Repository = (*masteryRepository)(nil)

func NewMasteryRepository(db *DB) mastery.Repository {
	return &masteryRepository{mst: db.mastery, prog: db.progress}
}

func (repo *masteryRepository) GetMastery(_ context.Context, userID, topic string) (mastery.Mastery, error) {
	repo.mst.RLock()
	defer repo.mst.RUnlock()

	for _, m := range repo.mst.table {
		if m.UserID == userID && m.Topic == topic {
			return *m, nil
		}
	}
	return mastery.Mastery{}, mastery.ErrNotFound
}

func (repo *masteryRepository) QueryMasteryByUser(_ context.Context, userID string) ([]mastery.Mastery, error) {
	repo.mst.RLock()
	defer repo.mst.RUnlock()

	var records []mastery.Mastery
	for _, m := range repo.mst.table {
		if m.UserID == userID {
			records = append(records, *m)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Topic < records[j].Topic })
	return records, nil
}

func (repo *masteryRepository) UpsertMastery(_ context.Context, m mastery.Mastery) (mastery.Mastery, error) {
	repo.mst.Lock()
	defer repo.mst.Unlock()
	repo.mst.table[m.ID] = &m
	return m, nil
}

func (repo *masteryRepository) GetProgressByUser(_ context.Context, userID string) (mastery.Progress, error) {
	repo.prog.RLock()
	defer repo.prog.RUnlock()

	if p, ok := repo.prog.table[userID]; ok {
		return *p, nil
	}
	return mastery.Progress{}, mastery.ErrProgressNotFound
}

func (repo *masteryRepository) UpsertProgress(_ context.Context, p mastery.Progress) (mastery.Progress, error) {
	repo.prog.Lock()
	defer repo.prog.Unlock()
	repo.prog.table[p.UserID] = &p
	return p, nil
}
