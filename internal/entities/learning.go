package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Level is the exam tier a word or article targets.
type Level string

const (
	LevelCET4 Level = "CET-4"
	LevelCET6 Level = "CET-6"
)

// Difficulty is the reading difficulty tag of an article.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// MistakeType categorizes a recorded mistake.
type MistakeType string

const (
	MistakeTypeSpelling MistakeType = "spelling"
	MistakeTypeGrammar  MistakeType = "grammar"
	MistakeTypeMeaning  MistakeType = "meaning"
)

// Word is a shared, identity-independent vocabulary entry.
type Word struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Word         string    `gorm:"index;size:100" json:"word"`
	Phonetic     string    `gorm:"size:100" json:"phonetic"`
	DefinitionEn string    `gorm:"type:text" json:"definition_en"`
	DefinitionCn string    `gorm:"type:text" json:"definition_cn"`
	ExampleEn    string    `gorm:"type:text" json:"example_en"`
	ExampleCn    string    `gorm:"type:text" json:"example_cn"`
	Source       string    `gorm:"size:100" json:"source"`
	Level        Level     `gorm:"index;size:10" json:"level"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserWord is the per-identity overlay on a shared Word. At most one row
// exists per (user, word) pair; all writes go through an upsert on that key.
type UserWord struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	UserID       string     `gorm:"uniqueIndex:idx_user_word;size:36" json:"user_id"`
	WordID       string     `gorm:"uniqueIndex:idx_user_word;size:36" json:"word_id"`
	Mastered     bool       `gorm:"default:false" json:"mastered"`
	Collected    bool       `gorm:"default:false" json:"collected"`
	LastReviewed *time.Time `json:"last_reviewed,omitempty"`
	ReviewCount  int        `gorm:"default:0" json:"review_count"`
	Word         Word       `gorm:"foreignKey:WordID" json:"word,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Article is a reading passage. Immutable once stored; generated articles are
// inserted by the background queue, never mutated in place.
type Article struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	Title      string     `gorm:"size:512" json:"title"`
	Level      Level      `gorm:"index;size:10" json:"level"`
	ReadTime   string     `gorm:"size:50" json:"read_time"`
	Difficulty Difficulty `gorm:"size:10" json:"difficulty"`
	Content    string     `gorm:"type:text" json:"content"`
	Keywords   []string   `gorm:"serializer:json" json:"keywords"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UserMistake is a recorded mistake scoped to one identity.
type UserMistake struct {
	ID          string      `gorm:"primaryKey;size:36" json:"id"`
	UserID      string      `gorm:"index;size:36" json:"user_id"`
	Title       string      `gorm:"size:256" json:"title"`
	Type        MistakeType `gorm:"size:20" json:"type"`
	Description string      `gorm:"type:text" json:"description"`
	Category    string      `gorm:"size:100" json:"category"`
	Practiced   bool        `gorm:"default:false" json:"practiced"`
	CreatedAt   time.Time   `json:"created_at"`
}

// UserStats holds per-identity aggregate study counters.
// LastCheckIn is a calendar date ("2006-01-02"), not a timestamp: the streak
// logic compares whole days.
type UserStats struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"uniqueIndex;size:36" json:"user_id"`
	StreakDays  int       `gorm:"default:0" json:"streak_days"`
	TotalWords  int       `gorm:"default:0" json:"total_words"`
	TotalHours  float64   `gorm:"default:0" json:"total_hours"`
	TodayWords  int       `gorm:"default:0" json:"today_words"`
	TodayHours  float64   `gorm:"default:0" json:"today_hours"`
	DailyGoal   int       `gorm:"default:50" json:"daily_goal"`
	LastCheckIn string    `gorm:"size:10" json:"last_check_in"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WritingEssay is a saved AI-assisted writing exercise.
type WritingEssay struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	UserID            string    `gorm:"index;size:36" json:"user_id"`
	Level             Level     `gorm:"size:10" json:"level"`
	Topic             string    `gorm:"size:256" json:"topic"`
	GeneratedTitle    string    `gorm:"size:512" json:"generated_title"`
	GeneratedContent  string    `gorm:"type:text" json:"generated_content"`
	StructureAnalysis string    `gorm:"type:text" json:"structure_analysis,omitempty"`
	KeyPhrases        []string  `gorm:"serializer:json" json:"key_phrases,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func (Word) TableName() string         { return "words" }
func (UserWord) TableName() string     { return "user_words" }
func (Article) TableName() string      { return "articles" }
func (UserMistake) TableName() string  { return "user_mistakes" }
func (UserStats) TableName() string    { return "user_stats" }
func (WritingEssay) TableName() string { return "writing_essays" }

func (w *Word) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

func (uw *UserWord) BeforeCreate(tx *gorm.DB) error {
	if uw.ID == "" {
		uw.ID = uuid.NewString()
	}
	return nil
}

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (m *UserMistake) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (s *UserStats) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

func (e *WritingEssay) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
