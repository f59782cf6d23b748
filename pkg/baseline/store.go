// Package baseline maintains per-user rolling voice fingerprints and scores
// each new session against them.
package baseline

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/leon-madara/ResonaAI-sub003/internal/models"
)

// Store persists baselines and deviation records. Storage is authoritative
// across restarts; the tracker holds no cache of its own.
type Store interface {
	// Load returns the row for (userID, baselineType), or nil when none
	// exists yet.
	Load(ctx context.Context, userID, baselineType string) (*models.UserBaseline, error)
	// SaveAll persists the rows atomically: either every row lands or
	// none does.
	SaveAll(ctx context.Context, rows []*models.UserBaseline) error
	SaveDeviation(ctx context.Context, d *models.SessionDeviation) error
}

// GormStore backs the Store interface with a relational database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates the baseline tables.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&models.UserBaseline{}, &models.SessionDeviation{})
}

func (s *GormStore) Load(ctx context.Context, userID, baselineType string) (*models.UserBaseline, error) {
	var row models.UserBaseline
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND baseline_type = ?", userID, baselineType).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *GormStore) Save(ctx context.Context, b *models.UserBaseline) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *GormStore) SaveAll(ctx context.Context, rows []*models.UserBaseline) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			if err := tx.Save(row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) SaveDeviation(ctx context.Context, d *models.SessionDeviation) error {
	return s.db.WithContext(ctx).Create(d).Error
}

// MemoryStore keeps baselines in process memory. Used in tests and for
// deployments without a database.
type MemoryStore struct {
	mu         sync.Mutex
	baselines  map[string]*models.UserBaseline
	deviations []*models.SessionDeviation
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{baselines: make(map[string]*models.UserBaseline)}
}

func (s *MemoryStore) Load(_ context.Context, userID, baselineType string) (*models.UserBaseline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.baselines[userID+"/"+baselineType]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (s *MemoryStore) Save(_ context.Context, b *models.UserBaseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *b
	s.baselines[b.UserID+"/"+b.BaselineType] = &copied
	return nil
}

func (s *MemoryStore) SaveAll(_ context.Context, rows []*models.UserBaseline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		copied := *row
		s.baselines[row.UserID+"/"+row.BaselineType] = &copied
	}
	return nil
}

func (s *MemoryStore) SaveDeviation(_ context.Context, d *models.SessionDeviation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *d
	s.deviations = append(s.deviations, &copied)
	return nil
}

// Deviations returns the recorded deviation rows.
func (s *MemoryStore) Deviations() []*models.SessionDeviation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.SessionDeviation, len(s.deviations))
	copy(out, s.deviations)
	return out
}
