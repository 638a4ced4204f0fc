// Package userwords provides database operations for the per-identity word
// overlay (mastered/collected state layered onto the shared word list).
//
// Every write is an upsert keyed by the (user_id, word_id) unique index, so at
// most one overlay row ever exists per pair.
package userwords

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

// Repository handles all overlay database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new user-words repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns all overlay rows for a user with the shared word
// preloaded, most recently updated first.
func (r *Repository) ListByUser(userID string) ([]entities.UserWord, error) {
	var rows []entities.UserWord
	err := r.db.Preload("Word").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListCollected returns the user's collected overlay rows with the shared
// word preloaded, most recently updated first.
func (r *Repository) ListCollected(userID string) ([]entities.UserWord, error) {
	var rows []entities.UserWord
	err := r.db.Preload("Word").
		Where("user_id = ? AND collected = ?", userID, true).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// SetMastered upserts the overlay's mastered flag together with a fresh
// last-reviewed timestamp.
func (r *Repository) SetMastered(userID, wordID string, mastered bool) (*entities.UserWord, error) {
	now := time.Now()
	return r.upsert(
		entities.UserWord{
			UserID:       userID,
			WordID:       wordID,
			Mastered:     mastered,
			LastReviewed: &now,
		},
		map[string]any{
			"mastered":      mastered,
			"last_reviewed": now,
			"updated_at":    now,
		},
	)
}

// SetCollected upserts the overlay's collected flag.
func (r *Repository) SetCollected(userID, wordID string, collected bool) (*entities.UserWord, error) {
	return r.upsert(
		entities.UserWord{
			UserID:    userID,
			WordID:    wordID,
			Collected: collected,
		},
		map[string]any{
			"collected":  collected,
			"updated_at": time.Now(),
		},
	)
}

// upsert inserts or updates on the (user_id, word_id) key and returns the
// resulting row.
func (r *Repository) upsert(row entities.UserWord, assignments map[string]any) (*entities.UserWord, error) {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "word_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&row).Error
	if err != nil {
		return nil, err
	}

	var updated entities.UserWord
	err = r.db.Where("user_id = ? AND word_id = ?", row.UserID, row.WordID).First(&updated).Error
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Count returns the number of overlay rows for a (user, word) pair.
func (r *Repository) Count(userID, wordID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.UserWord{}).
		Where("user_id = ? AND word_id = ?", userID, wordID).
		Count(&count).Error
	return count, err
}
