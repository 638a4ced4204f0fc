// Package mistakes provides database operations for per-identity mistake
// records.
package mistakes

import (
	"gorm.io/gorm"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

// Repository handles all mistake database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new mistakes repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByUser returns the user's mistakes, newest first.
func (r *Repository) ListByUser(userID string) ([]entities.UserMistake, error) {
	var rows []entities.UserMistake
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Add records a new mistake for the user.
func (r *Repository) Add(mistake *entities.UserMistake) error {
	return r.db.Create(mistake).Error
}

// MarkPracticed flags a mistake as practiced.
func (r *Repository) MarkPracticed(id string) error {
	return r.db.Model(&entities.UserMistake{}).
		Where("id = ?", id).
		Update("practiced", true).Error
}

// UnpracticedCount returns the number of mistakes still awaiting practice.
// The practiced count is derived by callers as total minus unpracticed.
func (r *Repository) UnpracticedCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&entities.UserMistake{}).
		Where("user_id = ? AND practiced = ?", userID, false).
		Count(&count).Error
	return count, err
}
