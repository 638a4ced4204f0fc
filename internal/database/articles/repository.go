// Package articles provides database operations for reading passages.
package articles

import (
	"gorm.io/gorm"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

// Repository handles all article database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new articles repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns articles newest first, optionally filtered by level.
func (r *Repository) List(level entities.Level) ([]entities.Article, error) {
	var articles []entities.Article
	query := r.db.Order("created_at DESC")
	if level != "" {
		query = query.Where("level = ?", level)
	}
	err := query.Find(&articles).Error
	return articles, err
}

// GetByID retrieves a single article.
func (r *Repository) GetByID(id string) (*entities.Article, error) {
	var article entities.Article
	if err := r.db.First(&article, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// Add stores a new article. Used by the generation queue; articles are never
// updated in place.
func (r *Repository) Add(article *entities.Article) error {
	return r.db.Create(article).Error
}
