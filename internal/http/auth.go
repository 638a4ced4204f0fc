package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuluo11/CET-Smart-Learn/internal/auth"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/session"
)

// AuthController exposes sign-up, verification, sign-in and profile
// endpoints on top of the session store.
type AuthController struct {
	sessions       *session.Store
	sessionManager *auth.SessionManager
}

func NewAuthController(sessions *session.Store, sessionManager *auth.SessionManager) *AuthController {
	return &AuthController{
		sessions:       sessions,
		sessionManager: sessionManager,
	}
}

// UserResponse is the identity shape returned to clients.
type UserResponse struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Verified bool           `json:"verified"`
	Metadata map[string]any `json:"metadata"`
}

func userResponse(u *entities.User) UserResponse {
	metadata := u.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return UserResponse{
		ID:       u.ID,
		Email:    u.Email,
		Verified: u.Verified,
		Metadata: metadata,
	}
}

// SessionResponse carries the issued token pair. Tokens are empty on
// session reads; they are only returned when granted.
type SessionResponse struct {
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresAt    int64        `json:"expiresAt"`
	User         UserResponse `json:"user"`
}

func sessionResponse(s *auth.Session) SessionResponse {
	return SessionResponse{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    s.ExpiresAt.Unix(),
		User:         userResponse(s.User),
	}
}

type signUpRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username"`
}

// SignUp registers a new identity. A verification code must be confirmed
// before signing in.
func (ac *AuthController) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	user, err := ac.sessions.SignUp(req.Email, req.Password, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondError(c, http.StatusConflict, "该邮箱已注册")
		case errors.Is(err, auth.ErrEmailRequired), errors.Is(err, auth.ErrEmailInvalid),
			errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "sign up")
		}
		return
	}

	respondCreated(c, gin.H{
		"message": "验证码已发送，请查收邮箱",
		"user":    userResponse(user),
	})
}

type verifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// VerifyOTP confirms a one-time code and grants the first session.
func (ac *AuthController) VerifyOTP(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and code are required")
		return
	}

	sess, err := ac.sessions.VerifyOTP(req.Email, req.Code)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidOTP) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "verify otp")
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, sess.User); err != nil {
		respondInternalError(c, err, "create cookie session")
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login signs in with email and password.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "email and password are required")
		return
	}

	sess, err := ac.sessions.SignIn(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			respondUnauthorized(c, err.Error())
		case errors.Is(err, auth.ErrEmailNotVerified):
			respondError(c, http.StatusForbidden, err.Error())
		default:
			respondInternalError(c, err, "login")
		}
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, sess.User); err != nil {
		respondInternalError(c, err, "create cookie session")
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh rotates a token pair.
func (ac *AuthController) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "refreshToken is required")
		return
	}

	sess, err := ac.sessions.RefreshSession(req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			respondUnauthorized(c, "invalid refresh token")
			return
		}
		respondInternalError(c, err, "refresh session")
		return
	}

	c.JSON(http.StatusOK, sessionResponse(sess))
}

// Logout revokes the token session and destroys the cookie session.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessions.SignOut(); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
		respondInternalError(c, err, "logout")
		return
	}

	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "destroy cookie session")
		return
	}

	respondSuccess(c, "已退出登录")
}

// CurrentSession returns the cached identity, or null fields when signed
// out. Public so the client can restore state on launch.
func (ac *AuthController) CurrentSession(c *gin.Context) {
	identity := ac.sessions.Identity()
	if identity == nil {
		c.JSON(http.StatusOK, gin.H{
			"user":    nil,
			"loading": ac.sessions.Loading(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    userResponse(identity),
		"loading": ac.sessions.Loading(),
	})
}

type metadataRequest struct {
	Metadata map[string]any `json:"metadata" binding:"required"`
}

// UpdateMetadata merges profile values into the identity's metadata.
func (ac *AuthController) UpdateMetadata(c *gin.Context) {
	var req metadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "metadata is required")
		return
	}

	updated, err := ac.sessions.UpdateMetadata(req.Metadata)
	if err != nil {
		if errors.Is(err, session.ErrNotAuthenticated) {
			respondUnauthorized(c, err.Error())
			return
		}
		respondInternalError(c, err, "update metadata")
		return
	}

	c.JSON(http.StatusOK, userResponse(updated))
}

// UploadAvatar stores the identity's avatar image and returns its public
// URL with a cache-busting suffix.
func (ac *AuthController) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		respondBadRequest(c, "avatar file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := ac.sessions.UploadAvatar(c.Request.Context(), file, header.Size, contentType)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotAuthenticated):
			respondUnauthorized(c, err.Error())
		case errors.Is(err, session.ErrAvatarTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, err.Error())
		default:
			respondInternalError(c, err, "upload avatar")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
