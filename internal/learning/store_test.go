package learning

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yuluo11/CET-Smart-Learn/internal/auth"
	"github.com/yuluo11/CET-Smart-Learn/internal/config"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/articles"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/mistakes"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/stats"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/userwords"
	"github.com/yuluo11/CET-Smart-Learn/internal/database/words"
	"github.com/yuluo11/CET-Smart-Learn/internal/defaults"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/session"
	"github.com/yuluo11/CET-Smart-Learn/internal/storage/providers/local"
	"github.com/yuluo11/CET-Smart-Learn/internal/view"
)

type testEnv struct {
	db       *gorm.DB
	sessions *session.Store
	store    *Store
	repos    Repositories
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	dbPath := "./test_learning_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.AuthSession{},
		&entities.Word{},
		&entities.UserWord{},
		&entities.Article{},
		&entities.UserMistake{},
		&entities.UserStats{},
	)
	require.NoError(t, err)

	for _, word := range defaults.Words() {
		w := word
		require.NoError(t, db.Create(&w).Error)
	}

	svc := auth.NewService(db, config.Auth{
		BcryptCost:  bcrypt.MinCost,
		OTPLifetime: 10 * time.Minute,
		TokenExpiry: time.Hour,
	})

	objects, err := local.NewClient(t.TempDir(), "https://cdn.example.com")
	require.NoError(t, err)

	sessions := session.NewStore(svc, objects)
	sessions.Initialize()

	repos := Repositories{
		Words:     words.NewRepository(db),
		UserWords: userwords.NewRepository(db),
		Articles:  articles.NewRepository(db),
		Mistakes:  mistakes.NewRepository(db),
		Stats:     stats.NewRepository(db),
	}
	store := NewStore(sessions, repos)

	cleanup := func() {
		store.Close()
		sessions.Close()
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return &testEnv{db: db, sessions: sessions, store: store, repos: repos}, cleanup
}

// signIn verifies a fresh user through the session store so the identity is
// set synchronously.
func (e *testEnv) signIn(t *testing.T, email string) *entities.User {
	t.Helper()

	user, err := e.sessions.SignUp(email, "password123", "tester")
	require.NoError(t, err)

	var stored entities.User
	require.NoError(t, e.db.First(&stored, "id = ?", user.ID).Error)

	sess, err := e.sessions.VerifyOTP(email, stored.OTPCode)
	require.NoError(t, err)
	return sess.User
}

func TestStore_DefaultsBeforeAnyFetch(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	words := env.store.Words()
	require.Len(t, words, 3)
	assert.Equal(t, "Resilient", words[0].Word)
	assert.False(t, words[0].Mastered)

	assert.Equal(t, view.DefaultStats, env.store.Stats())
	assert.Equal(t, 50, env.store.Stats().DailyGoal)

	article := env.store.CurrentArticle()
	assert.Equal(t, "The Future of Renewable Energy", article.Title)

	counts := env.store.MistakeCounts()
	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, 3, counts.Unpracticed)
	assert.Zero(t, counts.Practiced)
}

func TestStore_RefreshAll_EndToEnd(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	user := env.signIn(t, "student@example.com")

	// The built-in defaults carry no database IDs, so seed the overlay
	// against the stored rows.
	dbWords, err := env.repos.Words.List("")
	require.NoError(t, err)
	require.Len(t, dbWords, 3)

	_, err = env.repos.UserWords.SetMastered(user.ID, dbWords[0].ID, true)
	require.NoError(t, err)
	_, err = env.repos.UserWords.SetCollected(user.ID, dbWords[1].ID, true)
	require.NoError(t, err)

	env.store.RefreshAll()

	assert.False(t, env.store.Loading())

	refreshed := env.store.Words()
	require.Len(t, refreshed, 3)
	byWord := map[string]view.Word{}
	for _, w := range refreshed {
		byWord[w.Word] = w
	}
	assert.True(t, byWord[dbWords[0].Word].Mastered)
	assert.NotEmpty(t, byWord[dbWords[0].Word].LastReviewed)
	assert.False(t, byWord[dbWords[2].Word].Mastered)

	collected := env.store.CollectedWords()
	require.Len(t, collected, 1)
	assert.Equal(t, dbWords[1].Word, collected[0].Word)

	// Verification created the stats row.
	assert.Equal(t, 50, env.store.Stats().DailyGoal)

	// No real mistakes yet; the built-in samples are replaced.
	assert.Empty(t, env.store.Mistakes())
	assert.Zero(t, env.store.MistakeCounts().Total)
}

func TestStore_RefreshWords_FailureKeepsStaleCache(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	env.signIn(t, "student@example.com")
	env.store.RefreshWords()
	before := env.store.Words()
	require.NotEmpty(t, before)

	// Force fetch failures.
	require.NoError(t, env.db.Migrator().DropTable(&entities.Word{}))

	env.store.RefreshWords()

	assert.Equal(t, before, env.store.Words(), "failed refresh must not clear the cache")
	assert.False(t, env.store.Loading())
}

func TestStore_StaleCompletionIsDiscarded(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	older := env.store.beginRefresh(collectionWords)
	newer := env.store.beginRefresh(collectionWords)

	env.store.finishRefresh(collectionWords, newer, func() {
		env.store.words = []view.Word{{Word: "fresh"}}
	})
	env.store.finishRefresh(collectionWords, older, func() {
		env.store.words = []view.Word{{Word: "stale"}}
	})

	words := env.store.Words()
	require.Len(t, words, 1)
	assert.Equal(t, "fresh", words[0].Word)
}

func TestStore_UpdateWordMastered_PatchesInMemory(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	user := env.signIn(t, "student@example.com")
	env.store.RefreshWords()

	target := env.store.Words()[0]
	require.NoError(t, env.store.UpdateWordMastered(target.ID, true))

	updated := env.store.Words()[0]
	assert.True(t, updated.Mastered)
	assert.NotEmpty(t, updated.LastReviewed)

	// Repeating the mutation keeps a single overlay row.
	require.NoError(t, env.store.UpdateWordMastered(target.ID, true))
	count, err := env.repos.UserWords.Count(user.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestStore_ToggleCollect_RecomputesCollected(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	env.signIn(t, "student@example.com")
	env.store.RefreshAll()

	words := env.store.Words()
	require.NoError(t, env.store.ToggleCollect(words[0].ID, true))
	require.NoError(t, env.store.ToggleCollect(words[1].ID, true))
	assert.Len(t, env.store.CollectedWords(), 2)

	require.NoError(t, env.store.ToggleCollect(words[0].ID, false))

	collected := env.store.CollectedWords()
	require.Len(t, collected, 1)
	assert.Equal(t, words[1].ID, collected[0].ID)
}

func TestStore_CheckIn(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	env.signIn(t, "student@example.com")

	updated, err := env.store.CheckIn()
	require.NoError(t, err)
	assert.Equal(t, 1, updated.StreakDays)
	assert.Equal(t, 1, env.store.Stats().StreakDays)
}

func TestStore_CheckIn_NoStatsRecord(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	user := env.signIn(t, "student@example.com")
	require.NoError(t, env.db.Delete(&entities.UserStats{}, "user_id = ?", user.ID).Error)

	_, err := env.store.CheckIn()
	assert.ErrorIs(t, err, stats.ErrNoStatsRecord)
}

func TestStore_MutationsRequireIdentity(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	assert.ErrorIs(t, env.store.UpdateWordMastered("w-1", true), ErrNotAuthenticated)
	assert.ErrorIs(t, env.store.ToggleCollect("w-1", true), ErrNotAuthenticated)
	_, err := env.store.CheckIn()
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.ErrorIs(t, env.store.MarkMistakePracticed("m-1"), ErrNotAuthenticated)
	assert.ErrorIs(t, env.store.AddMistake("t", entities.MistakeTypeSpelling, "", ""), ErrNotAuthenticated)
}

func TestStore_MistakeLifecycle(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	env.signIn(t, "student@example.com")
	env.store.RefreshMistakes()

	require.NoError(t, env.store.AddMistake("Accommodate", entities.MistakeTypeSpelling, "double letters", "CET-4 词汇"))
	require.NoError(t, env.store.AddMistake("Affect vs Effect", entities.MistakeTypeMeaning, "", "CET-4 词汇"))

	counts := env.store.MistakeCounts()
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, 2, counts.Unpracticed)

	mistake := env.store.Mistakes()[0]
	require.NoError(t, env.store.MarkMistakePracticed(mistake.ID))

	counts = env.store.MistakeCounts()
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, 1, counts.Practiced)
	assert.Equal(t, 1, counts.Unpracticed)
	assert.Equal(t, counts.Total, counts.Practiced+counts.Unpracticed)
}

func TestStore_CurrentArticle_PrefersNewest(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	require.NoError(t, env.repos.Articles.Add(&entities.Article{
		Title: "Older", Level: entities.LevelCET4, CreatedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, env.repos.Articles.Add(&entities.Article{
		Title: "Newest", Level: entities.LevelCET6,
	}))

	env.store.RefreshArticles()

	assert.Equal(t, "Newest", env.store.CurrentArticle().Title)
	assert.Len(t, env.store.Articles(), 2)
}

func TestStore_Watch_RefreshesOnSignIn(t *testing.T) {
	env, cleanup := setupTestEnv(t)
	defer cleanup()

	env.store.Watch()

	env.signIn(t, "student@example.com")

	// The watcher fires asynchronously off the session change event.
	require.Eventually(t, func() bool {
		words := env.store.Words()
		return len(words) == 3 && words[0].ID != ""
	}, 2*time.Second, 20*time.Millisecond, "expected a refresh after sign-in")
}
