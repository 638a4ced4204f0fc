package auth

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

	"github.com/yuluo11/CET-Smart-Learn/internal/config"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB, func()) {
	dbPath := "./test_auth_" + t.Name() + ".db"

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

	svc := NewService(db, config.Auth{
		BcryptCost:  bcrypt.MinCost,
		OTPLifetime: 10 * time.Minute,
		TokenExpiry: time.Hour,
	})

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return svc, db, cleanup
}

// signUpAndVerify creates a verified user with an active session.
func signUpAndVerify(t *testing.T, svc *Service, db *gorm.DB, email, password string) *Session {
	t.Helper()

	user, err := svc.SignUp(email, password, "tester")
	require.NoError(t, err)

	var stored entities.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)

	sess, err := svc.VerifyOTP(email, stored.OTPCode)
	require.NoError(t, err)
	return sess
}

func TestService_SignUp(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.SignUp("student@example.com", "password123", "小明")
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.False(t, user.Verified)
	assert.Equal(t, "小明", user.Metadata["username"])

	var stored entities.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Len(t, stored.OTPCode, 6)
	require.NotNil(t, stored.OTPExpiresAt)
	assert.True(t, stored.OTPExpiresAt.After(time.Now()))
}

func TestService_SignUp_Validation(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.SignUp("", "password123", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.SignUp("not-an-email", "password123", "")
	assert.ErrorIs(t, err, ErrEmailInvalid)

	_, err = svc.SignUp("student@example.com", "short", "")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_SignUp_DuplicateEmail(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.SignUp("student@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.SignUp("student@example.com", "password456", "")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_VerifyOTP(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	sess := signUpAndVerify(t, svc, db, "student@example.com", "password123")

	assert.NotEmpty(t, sess.AccessToken)
	assert.NotEmpty(t, sess.RefreshToken)
	assert.True(t, sess.User.Verified)

	// Verification creates the initial stats row.
	var stats entities.UserStats
	require.NoError(t, db.First(&stats, "user_id = ?", sess.User.ID).Error)
	assert.Equal(t, 50, stats.DailyGoal)
}

func TestService_VerifyOTP_WrongCode(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.SignUp("student@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.VerifyOTP("student@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestService_VerifyOTP_Expired(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.SignUp("student@example.com", "password123", "")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&entities.User{}).
		Where("id = ?", user.ID).
		Update("otp_expires_at", expired).Error)

	var stored entities.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)

	_, err = svc.VerifyOTP("student@example.com", stored.OTPCode)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestService_SignIn(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	signUpAndVerify(t, svc, db, "student@example.com", "password123")

	sess, err := svc.SignIn("student@example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)
	assert.Equal(t, "student@example.com", sess.User.Email)
}

func TestService_SignIn_Unverified(t *testing.T) {
	svc, _, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.SignUp("student@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.SignIn("student@example.com", "password123")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestService_SignIn_WrongPassword(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	signUpAndVerify(t, svc, db, "student@example.com", "password123")

	_, err := svc.SignIn("student@example.com", "wrongpassword")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn("unknown@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_ValidateToken(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	sess := signUpAndVerify(t, svc, db, "student@example.com", "password123")

	user, err := svc.ValidateToken(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, user.ID)

	_, err = svc.ValidateToken("bogus")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RefreshSession(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	sess := signUpAndVerify(t, svc, db, "student@example.com", "password123")

	rotated, err := svc.RefreshSession(sess.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, sess.AccessToken, rotated.AccessToken)

	// The old pair is revoked.
	_, err = svc.ValidateToken(sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.RefreshSession(sess.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_SignOut(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	sess := signUpAndVerify(t, svc, db, "student@example.com", "password123")

	require.NoError(t, svc.SignOut(sess.ID))

	_, err := svc.ValidateToken(sess.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	assert.ErrorIs(t, svc.SignOut(sess.ID), ErrSessionNotFound)
}

func TestService_UpdateMetadata_Merges(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	sess := signUpAndVerify(t, svc, db, "student@example.com", "password123")

	updated, err := svc.UpdateMetadata(sess.User.ID, map[string]any{"avatarSeed": "panda"})
	require.NoError(t, err)

	assert.Equal(t, "tester", updated.Metadata["username"], "existing keys survive the merge")
	assert.Equal(t, "panda", updated.Metadata["avatarSeed"])
}

func TestService_Subscribe(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	events, cancel := svc.Subscribe()
	defer cancel()

	sess := signUpAndVerify(t, svc, db, "student@example.com", "password123")

	select {
	case event := <-events:
		assert.Equal(t, EventSignedIn, event.Type)
		require.NotNil(t, event.Session)
		assert.Equal(t, sess.User.ID, event.Session.User.ID)
	case <-time.After(time.Second):
		t.Fatal("expected a signed-in event")
	}

	require.NoError(t, svc.SignOut(sess.ID))

	select {
	case event := <-events:
		assert.Equal(t, EventSignedOut, event.Type)
		assert.Nil(t, event.Session)
	case <-time.After(time.Second):
		t.Fatal("expected a signed-out event")
	}
}

func TestService_DeleteExpiredOTPCodes(t *testing.T) {
	svc, db, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.SignUp("student@example.com", "password123", "")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Model(&entities.User{}).
		Where("id = ?", user.ID).
		Update("otp_expires_at", expired).Error)

	purged, err := svc.DeleteExpiredOTPCodes()
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	var stored entities.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.Empty(t, stored.OTPCode)
}
