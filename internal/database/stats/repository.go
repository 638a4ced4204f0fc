// Package stats provides database operations for per-identity study counters,
// including the daily check-in streak logic.
package stats

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

// ErrNoStatsRecord indicates the identity has no stats row yet. Check-in never
// creates one.
var ErrNoStatsRecord = errors.New("用户统计记录不存在")

const dateLayout = "2006-01-02"

// Repository handles all stats database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new stats repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the user's stats row, or gorm.ErrRecordNotFound.
func (r *Repository) Get(userID string) (*entities.UserStats, error) {
	var row entities.UserStats
	if err := r.db.First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create inserts an initial stats row for a newly verified identity.
func (r *Repository) Create(userID string) (*entities.UserStats, error) {
	row := entities.UserStats{UserID: userID, DailyGoal: 50}
	if err := r.db.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Update applies partial counter updates.
func (r *Repository) Update(userID string, updates map[string]any) (*entities.UserStats, error) {
	err := r.db.Model(&entities.UserStats{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return r.Get(userID)
}

// CheckIn performs the daily check-in:
//   - last check-in was yesterday: streak increments by one
//   - last check-in was today: streak and today counters are left unchanged
//   - anything older (or never): streak resets to 1
//
// The today counters reset whenever the last check-in date differs from today.
func (r *Repository) CheckIn(userID string) (*entities.UserStats, error) {
	return r.checkInAt(userID, time.Now())
}

func (r *Repository) checkInAt(userID string, now time.Time) (*entities.UserStats, error) {
	row, err := r.Get(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoStatsRecord
		}
		return nil, err
	}

	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	if row.LastCheckIn == today {
		return row, nil
	}

	streak := 1
	if row.LastCheckIn == yesterday {
		streak = row.StreakDays + 1
	}

	return r.Update(userID, map[string]any{
		"streak_days":   streak,
		"last_check_in": today,
		"today_words":   0,
		"today_hours":   0.0,
	})
}
