// Package essays provides database operations for saved writing exercises.
package essays

import (
	"gorm.io/gorm"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

// Repository handles all writing-essay database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new essays repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save stores a generated essay for the user.
func (r *Repository) Save(essay *entities.WritingEssay) error {
	return r.db.Create(essay).Error
}

// ListByUser returns the user's saved essays, newest first.
func (r *Repository) ListByUser(userID string) ([]entities.WritingEssay, error) {
	var rows []entities.WritingEssay
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
