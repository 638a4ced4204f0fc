package session

import (
	"context"
	"os"
	"strings"
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
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/storage/providers/local"
)

func setupTestStore(t *testing.T) (*Store, *auth.Service, *gorm.DB, func()) {
	dbPath := "./test_session_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&entities.User{},
		&entities.AuthSession{},
		&entities.UserStats{},
	)
	require.NoError(t, err)

	svc := auth.NewService(db, config.Auth{
		BcryptCost:  bcrypt.MinCost,
		OTPLifetime: 10 * time.Minute,
		TokenExpiry: time.Hour,
	})

	objects, err := local.NewClient(t.TempDir(), "https://cdn.example.com/storage")
	require.NoError(t, err)

	store := NewStore(svc, objects)
	store.Initialize()

	cleanup := func() {
		store.Close()
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return store, svc, db, cleanup
}

func verifyTestUser(t *testing.T, store *Store, db *gorm.DB, email string) *auth.Session {
	t.Helper()

	user, err := store.SignUp(email, "password123", "tester")
	require.NoError(t, err)

	var stored entities.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)

	sess, err := store.VerifyOTP(email, stored.OTPCode)
	require.NoError(t, err)
	return sess
}

func TestStore_Initialize_NoSession(t *testing.T) {
	store, _, _, cleanup := setupTestStore(t)
	defer cleanup()

	assert.False(t, store.Loading(), "loading drops after the first read")
	assert.Nil(t, store.Identity())
	assert.Nil(t, store.Session())
}

func TestStore_VerifyOTP_SetsIdentityExplicitly(t *testing.T) {
	store, _, db, cleanup := setupTestStore(t)
	defer cleanup()

	sess := verifyTestUser(t, store, db, "student@example.com")

	// Set synchronously, no waiting on the subscription.
	identity := store.Identity()
	require.NotNil(t, identity)
	assert.Equal(t, sess.User.ID, identity.ID)
}

func TestStore_SignIn_UpdatesViaSubscription(t *testing.T) {
	store, _, db, cleanup := setupTestStore(t)
	defer cleanup()

	changes, cancel := store.Subscribe()
	defer cancel()

	sess := verifyTestUser(t, store, db, "student@example.com")

	// Drain the verification's sign-in event before signing out.
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected the sign-in event")
	}

	require.NoError(t, store.SignOut())
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected the sign-out event")
	}
	require.Nil(t, store.Identity())

	returned, err := store.SignIn("student@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, returned.User.ID)

	// Earlier sign-out notifications may still be in flight; wait for the
	// change that carries the identity.
	deadline := time.After(time.Second)
	for {
		select {
		case change := <-changes:
			if change.Identity == nil {
				continue
			}
			assert.Equal(t, sess.User.ID, change.Identity.ID)
			require.NotNil(t, store.Identity())
			return
		case <-deadline:
			t.Fatal("expected an identity change")
		}
	}
}

func TestStore_SignOut_ClearsState(t *testing.T) {
	store, _, db, cleanup := setupTestStore(t)
	defer cleanup()

	verifyTestUser(t, store, db, "student@example.com")

	changes, cancel := store.Subscribe()
	defer cancel()

	// Let the verification's sign-in event settle before signing out.
	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("expected the sign-in event")
	}

	require.NoError(t, store.SignOut())

	select {
	case change := <-changes:
		assert.Nil(t, change.Identity)
	case <-time.After(time.Second):
		t.Fatal("expected the sign-out event")
	}

	assert.Nil(t, store.Identity())
	assert.Nil(t, store.Session())
}

func TestStore_UpdateMetadata(t *testing.T) {
	store, _, db, cleanup := setupTestStore(t)
	defer cleanup()

	verifyTestUser(t, store, db, "student@example.com")

	updated, err := store.UpdateMetadata(map[string]any{"avatarSeed": "panda"})
	require.NoError(t, err)
	assert.Equal(t, "panda", updated.Metadata["avatarSeed"])
	assert.Equal(t, "panda", store.Identity().Metadata["avatarSeed"])
}

func TestStore_UpdateMetadata_RequiresIdentity(t *testing.T) {
	store, _, _, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.UpdateMetadata(map[string]any{"k": "v"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestStore_UploadAvatar(t *testing.T) {
	store, _, db, cleanup := setupTestStore(t)
	defer cleanup()

	sess := verifyTestUser(t, store, db, "student@example.com")

	url, err := store.UploadAvatar(context.Background(), strings.NewReader("fake-png"), 8, "image/png")
	require.NoError(t, err)

	assert.Contains(t, url, "https://cdn.example.com/storage/avatars/"+sess.User.ID+"/avatar")
	assert.Contains(t, url, "?t=", "public URL carries a cache-busting timestamp")
}

func TestStore_UploadAvatar_Preconditions(t *testing.T) {
	store, _, db, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.UploadAvatar(context.Background(), strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	verifyTestUser(t, store, db, "student@example.com")

	_, err = store.UploadAvatar(context.Background(), strings.NewReader("x"), MaxAvatarSize+1, "image/png")
	assert.ErrorIs(t, err, ErrAvatarTooLarge)
}
