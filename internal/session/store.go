// Package session holds the single source of truth for the authenticated
// identity. Only this store mutates identity state; other components read
// from it or subscribe to its change notifications.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/yuluo11/CET-Smart-Learn/internal/auth"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
	"github.com/yuluo11/CET-Smart-Learn/internal/storage"
)

// MaxAvatarSize is the upload limit for avatar images.
const MaxAvatarSize = 5 * 1024 * 1024

const avatarBucket = "avatars"

var (
	ErrNotAuthenticated = errors.New("请先登录")
	ErrAvatarTooLarge   = errors.New("图片大小不能超过5MB")
)

// Change notifies subscribers that the cached identity was replaced.
// Identity is nil after sign-out.
type Change struct {
	Identity *entities.User
	Session  *auth.Session
}

// Store caches the current identity and session. All provider errors
// propagate to callers unchanged; there is no retry.
type Store struct {
	authService *auth.Service
	objects     storage.Client

	mu       sync.RWMutex
	identity *entities.User
	session  *auth.Session
	loading  bool

	subMu       sync.Mutex
	subscribers map[int]chan Change
	nextSubID   int

	unsubscribe func()
	done        chan struct{}
}

// NewStore creates a session store. Call Initialize before use and Close on
// shutdown.
func NewStore(authService *auth.Service, objects storage.Client) *Store {
	return &Store{
		authService: authService,
		objects:     objects,
		loading:     true,
		subscribers: make(map[int]chan Change),
		done:        make(chan struct{}),
	}
}

// Initialize reads any existing session once and starts consuming auth
// change events. The loading flag drops after the first read regardless of
// outcome.
func (s *Store) Initialize() {
	sess, err := s.authService.CurrentSession()
	if err != nil {
		log.Printf("session: failed to read existing session: %v", err)
	}

	s.mu.Lock()
	if sess != nil {
		s.identity = sess.User
		s.session = sess
	}
	s.loading = false
	s.mu.Unlock()

	events, cancel := s.authService.Subscribe()
	s.unsubscribe = cancel

	go func() {
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				s.applyEvent(event)
			case <-s.done:
				return
			}
		}
	}()
}

// applyEvent unconditionally replaces the cached identity and session with
// whatever the event carries.
func (s *Store) applyEvent(event auth.Event) {
	s.mu.Lock()
	if event.Session != nil {
		s.identity = event.Session.User
		s.session = event.Session
	} else {
		s.identity = nil
		s.session = nil
	}
	identity := s.identity
	session := s.session
	s.mu.Unlock()

	s.notify(Change{Identity: identity, Session: session})
}

// Close stops the event subscription.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	close(s.done)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// Subscribe registers for identity change notifications. The returned func
// cancels the subscription.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Change, 8)
	s.subscribers[id] = ch

	cancel := func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Store) notify(change Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- change:
		default:
		}
	}
}

// Identity returns the cached identity, or nil when signed out.
func (s *Store) Identity() *entities.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Session returns the cached session, or nil when signed out.
func (s *Store) Session() *auth.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Loading reports whether the initial session read is still in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// SignIn delegates to the identity provider. Local state is NOT updated
// here; the change event applies it asynchronously.
func (s *Store) SignIn(email, password string) (*auth.Session, error) {
	return s.authService.SignIn(email, password)
}

// SignUp registers a new identity. A follow-up OTP verification is required
// before any session exists.
func (s *Store) SignUp(email, password, username string) (*entities.User, error) {
	return s.authService.SignUp(email, password, username)
}

// VerifyOTP confirms a one-time code. On success the local identity and
// session are set explicitly from the returned payload rather than waiting
// for the subscription.
func (s *Store) VerifyOTP(email, code string) (*auth.Session, error) {
	sess, err := s.authService.VerifyOTP(email, code)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.identity = sess.User
	s.session = sess
	s.mu.Unlock()

	return sess, nil
}

// RefreshSession rotates a token pair. Local state is updated by the change
// event, like SignIn.
func (s *Store) RefreshSession(refreshToken string) (*auth.Session, error) {
	return s.authService.RefreshSession(refreshToken)
}

// UpdateMetadata merges key/values into the identity's metadata and replaces
// the local identity with the updated one.
func (s *Store) UpdateMetadata(data map[string]any) (*entities.User, error) {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()
	if identity == nil {
		return nil, ErrNotAuthenticated
	}

	updated, err := s.authService.UpdateMetadata(identity.ID, data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.identity = updated
	s.mu.Unlock()

	return updated, nil
}

// UploadAvatar stores an avatar image under the identity's fixed object key,
// overwriting any previous one. Returns the public URL with a cache-busting
// timestamp suffix. Preconditions are checked before any remote call.
func (s *Store) UploadAvatar(ctx context.Context, content io.Reader, size int64, contentType string) (string, error) {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()
	if identity == nil {
		return "", ErrNotAuthenticated
	}
	if size > MaxAvatarSize {
		return "", ErrAvatarTooLarge
	}

	key := identity.ID + "/avatar"
	if err := s.objects.Upload(ctx, avatarBucket, key, content, contentType); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?t=%d", s.objects.PublicURL(avatarBucket, key), time.Now().UnixMilli())
	return url, nil
}

// SignOut revokes the session and unconditionally clears local state, even
// when revocation fails.
func (s *Store) SignOut() error {
	s.mu.RLock()
	sess := s.session
	s.mu.RUnlock()

	var err error
	if sess != nil {
		err = s.authService.SignOut(sess.ID)
	}

	s.mu.Lock()
	s.identity = nil
	s.session = nil
	s.mu.Unlock()

	return err
}
