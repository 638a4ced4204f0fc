package userwords

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

func setupTestDB(t *testing.T) (*gorm.DB, *Repository, func()) {
	dbPath := "./test_userwords_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.Word{},
		&entities.UserWord{},
	)
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return db, repo, cleanup
}

func createTestWord(t *testing.T, db *gorm.DB, word string) *entities.Word {
	w := &entities.Word{Word: word, Level: entities.LevelCET4}
	require.NoError(t, db.Create(w).Error)
	return w
}

func TestRepository_SetMastered(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	word := createTestWord(t, db, "resilient")

	row, err := repo.SetMastered("user-1", word.ID, true)
	require.NoError(t, err)

	assert.True(t, row.Mastered)
	require.NotNil(t, row.LastReviewed)
	assert.WithinDuration(t, time.Now(), *row.LastReviewed, 5*time.Second)
}

func TestRepository_SetMastered_UpsertKeepsOneRow(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	word := createTestWord(t, db, "acknowledge")

	_, err := repo.SetMastered("user-1", word.ID, true)
	require.NoError(t, err)
	_, err = repo.SetMastered("user-1", word.ID, true)
	require.NoError(t, err)
	row, err := repo.SetMastered("user-1", word.ID, false)
	require.NoError(t, err)

	count, err := repo.Count("user-1", word.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.False(t, row.Mastered)
}

func TestRepository_SetCollected_PreservesMastered(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	word := createTestWord(t, db, "consistent")

	_, err := repo.SetMastered("user-1", word.ID, true)
	require.NoError(t, err)
	row, err := repo.SetCollected("user-1", word.ID, true)
	require.NoError(t, err)

	assert.True(t, row.Collected)
	assert.True(t, row.Mastered, "collect upsert must not reset mastered")

	count, err := repo.Count("user-1", word.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_ListCollected(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := createTestWord(t, db, "mitigate")
	second := createTestWord(t, db, "incentive")
	third := createTestWord(t, db, "paradigm")

	_, err := repo.SetCollected("user-1", first.ID, true)
	require.NoError(t, err)
	_, err = repo.SetCollected("user-1", second.ID, true)
	require.NoError(t, err)
	_, err = repo.SetCollected("user-1", third.ID, false)
	require.NoError(t, err)
	_, err = repo.SetCollected("user-2", third.ID, true)
	require.NoError(t, err)

	rows, err := repo.ListCollected("user-1")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.True(t, row.Collected)
		assert.Equal(t, "user-1", row.UserID)
		assert.NotEmpty(t, row.Word.Word, "word must be preloaded")
	}
}

func TestRepository_ListCollected_AfterUncollect(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	word := createTestWord(t, db, "pivotal")

	_, err := repo.SetCollected("user-1", word.ID, true)
	require.NoError(t, err)
	_, err = repo.SetCollected("user-1", word.ID, false)
	require.NoError(t, err)

	rows, err := repo.ListCollected("user-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRepository_ListByUser(t *testing.T) {
	db, repo, cleanup := setupTestDB(t)
	defer cleanup()

	word := createTestWord(t, db, "sustainable")
	_, err := repo.SetMastered("user-1", word.ID, true)
	require.NoError(t, err)

	rows, err := repo.ListByUser("user-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, word.ID, rows[0].WordID)
	assert.Equal(t, "sustainable", rows[0].Word.Word)
}
