package mistakes

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_mistakes_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.UserMistake{}))

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func addMistake(t *testing.T, repo *Repository, userID, title string) *entities.UserMistake {
	m := &entities.UserMistake{
		UserID:   userID,
		Title:    title,
		Type:     entities.MistakeTypeSpelling,
		Category: "CET-4 词汇",
	}
	require.NoError(t, repo.Add(m))
	return m
}

func TestRepository_AddAndList(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	addMistake(t, repo, "user-1", "Accommodate")
	addMistake(t, repo, "user-1", "Affect vs Effect")
	addMistake(t, repo, "user-2", "Subject-Verb Agreement")

	rows, err := repo.ListByUser("user-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "user-1", row.UserID)
		assert.False(t, row.Practiced)
	}
}

func TestRepository_MarkPracticed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := addMistake(t, repo, "user-1", "Accommodate")
	addMistake(t, repo, "user-1", "Affect vs Effect")

	require.NoError(t, repo.MarkPracticed(first.ID))

	unpracticed, err := repo.UnpracticedCount("user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), unpracticed)

	rows, err := repo.ListByUser("user-1")
	require.NoError(t, err)
	practiced := 0
	for _, row := range rows {
		if row.Practiced {
			practiced++
		}
	}
	assert.Equal(t, len(rows)-int(unpracticed), practiced)
}

func TestRepository_UnpracticedCount_Empty(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	count, err := repo.UnpracticedCount("user-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}
