// Command generate_demo creates a demo database with a verified sample
// account and study data, so the app can be tried without signing up.
// Usage: go run cmd/generate_demo/main.go [-db path/to/demo.db]
//
// Demo credentials: demo@example.com / demo12345
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yuluo11/CET-Smart-Learn/internal/database"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/userwords"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

const defaultDemoDatabasePath = "./demo.db"

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	user := createDemoUser(db)
	seedOverlay(db, user)
	seedMistakes(db, user)
	seedStats(db, user)
	seedArticle(db)

	log.Println("Demo database generated successfully!")
	log.Println("Sign in with demo@example.com / demo12345")
}

func createDemoUser(db *database.Database) *entities.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("demo12345"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	now := time.Now()
	user := &entities.User{
		Email:        "demo@example.com",
		PasswordHash: string(hash),
		Verified:     true,
		Metadata:     map[string]any{"username": "演示用户"},
		LastLoginAt:  &now,
	}
	if err := db.DB.Create(user).Error; err != nil {
		log.Fatalf("Failed to create demo user: %v", err)
	}
	log.Printf("Created demo user %s", user.Email)
	return user
}

// seedOverlay masters the first seeded word and collects the second.
func seedOverlay(db *database.Database, user *entities.User) {
	var words []entities.Word
	if err := db.DB.Order("created_at ASC").Limit(2).Find(&words).Error; err != nil || len(words) < 2 {
		log.Fatalf("Failed to load seeded words: %v", err)
	}

	repo := userwords.NewRepository(db.DB)
	if _, err := repo.SetMastered(user.ID, words[0].ID, true); err != nil {
		log.Fatalf("Failed to master word: %v", err)
	}
	if _, err := repo.SetCollected(user.ID, words[1].ID, true); err != nil {
		log.Fatalf("Failed to collect word: %v", err)
	}
	log.Printf("Seeded word overlay (%s mastered, %s collected)", words[0].Word, words[1].Word)
}

func seedMistakes(db *database.Database, user *entities.User) {
	mistakes := []entities.UserMistake{
		{
			UserID:      user.ID,
			Title:       "Accommodate",
			Type:        entities.MistakeTypeSpelling,
			Description: `拼写错误："Acomodate"，需要双写 'c' 和 'm'。`,
			Category:    "CET-4 词汇",
		},
		{
			UserID:      user.ID,
			Title:       "Affect vs Effect",
			Type:        entities.MistakeTypeMeaning,
			Description: "混淆了动词 affect 和名词 effect。",
			Category:    "CET-4 词汇",
			Practiced:   true,
		},
	}
	for i := range mistakes {
		if err := db.DB.Create(&mistakes[i]).Error; err != nil {
			log.Fatalf("Failed to create mistake %s: %v", mistakes[i].Title, err)
		}
	}
	log.Printf("Seeded %d mistakes", len(mistakes))
}

func seedStats(db *database.Database, user *entities.User) {
	stats := &entities.UserStats{
		UserID:      user.ID,
		StreakDays:  3,
		TotalWords:  128,
		TotalHours:  6.5,
		TodayWords:  15,
		TodayHours:  0.5,
		DailyGoal:   50,
		LastCheckIn: time.Now().Format("2006-01-02"),
	}
	if err := db.DB.Create(stats).Error; err != nil {
		log.Fatalf("Failed to create stats: %v", err)
	}
	log.Println("Seeded study stats")
}

func seedArticle(db *database.Database) {
	article := &entities.Article{
		Title:      "Why Sleep Matters for Students",
		Level:      entities.LevelCET4,
		ReadTime:   "6 分钟阅读",
		Difficulty: entities.DifficultyMedium,
		Content: `Sleep is one of the most underrated tools for academic success. Research consistently shows that students who maintain a regular sleep schedule perform better on memory tasks and exams.

During deep sleep, the brain consolidates what was learned during the day, transferring information from short-term to long-term memory. Skipping sleep to study longer is therefore often counterproductive.

Experts recommend that university students aim for seven to nine hours per night, keep consistent bed times, and avoid screens in the hour before sleep.`,
		Keywords: []string{"consolidate", "consistent", "counterproductive", "maintain", "recommend"},
	}
	if err := db.DB.Create(article).Error; err != nil {
		log.Fatalf("Failed to create article: %v", err)
	}
	log.Printf("Seeded article %q", article.Title)
}
