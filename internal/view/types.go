// Package view defines the client-facing record shapes and the pure
// conversion functions from database entities. View records are disjoint from
// the wire/database shapes: handlers and stores never expose entities directly.
package view

import "github.com/yuluo11/CET-Smart-Learn/internal/entities"

// Word is a vocabulary entry with the caller's per-identity overlay applied.
type Word struct {
	ID           string `json:"id"`
	Word         string `json:"word"`
	Phonetic     string `json:"phonetic"`
	DefinitionEn string `json:"definitionEn"`
	DefinitionCn string `json:"definitionCn"`
	ExampleEn    string `json:"exampleEn"`
	ExampleCn    string `json:"exampleCn"`
	Source       string `json:"source"`
	Mastered     bool   `json:"mastered"`
	LastReviewed string `json:"lastReviewed,omitempty"`
}

// Article is a reading passage. Content paragraphs are separated by blank
// lines; quoted paragraphs start with a quote character.
type Article struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Level      entities.Level      `json:"level"`
	ReadTime   string              `json:"readTime"`
	Difficulty entities.Difficulty `json:"difficulty"`
	Content    string              `json:"content"`
	Keywords   []string            `json:"keywords"`
}

// Mistake is a recorded mistake with a render-time relative-time label.
type Mistake struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Type        entities.MistakeType `json:"type"`
	Description string               `json:"description"`
	Time        string               `json:"time"`
	Category    string               `json:"category"`
}

// Stats is the per-identity aggregate counter set.
type Stats struct {
	StreakDays int     `json:"streakDays"`
	TotalWords int     `json:"totalWords"`
	TotalHours float64 `json:"totalHours"`
	TodayWords int     `json:"todayWords"`
	TodayHours float64 `json:"todayHours"`
	DailyGoal  int     `json:"dailyGoal"`
}

// DefaultStats is the stats view before any remote record exists.
var DefaultStats = Stats{DailyGoal: 50}
