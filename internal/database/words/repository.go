// Package words provides database operations for the shared vocabulary list.
package words

import (
	"gorm.io/gorm"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

// Repository handles all shared-word database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new words repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all words ordered by creation time, optionally filtered by level.
func (r *Repository) List(level entities.Level) ([]entities.Word, error) {
	var words []entities.Word
	query := r.db.Order("created_at ASC")
	if level != "" {
		query = query.Where("level = ?", level)
	}
	err := query.Find(&words).Error
	return words, err
}

// GetByID retrieves a single word.
func (r *Repository) GetByID(id string) (*entities.Word, error) {
	var word entities.Word
	if err := r.db.First(&word, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &word, nil
}

// ListMissingDefinitions returns words that lack a phonetic or an English
// definition, oldest first.
func (r *Repository) ListMissingDefinitions() ([]entities.Word, error) {
	var words []entities.Word
	err := r.db.
		Where("phonetic = '' OR definition_en = ''").
		Order("created_at ASC").
		Find(&words).Error
	return words, err
}

// FillDefinitions sets dictionary-sourced fields on a word. Empty arguments
// leave the stored value untouched.
func (r *Repository) FillDefinitions(id, phonetic, definitionEn, exampleEn string) error {
	updates := map[string]any{}
	if phonetic != "" {
		updates["phonetic"] = phonetic
	}
	if definitionEn != "" {
		updates["definition_en"] = definitionEn
	}
	if exampleEn != "" {
		updates["example_en"] = exampleEn
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&entities.Word{}).Where("id = ?", id).Updates(updates).Error
}
