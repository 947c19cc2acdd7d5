package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when no session exists for a token.
var ErrNotFound = errors.New("session: not found")

// Session is the server-side state attached to one browser. The cookie only
// carries the opaque token; everything else lives in Redis.
type Session struct {
	Token     string    `json:"-"`
	MAC       string    `json:"mac,omitempty"`
	DeviceID  string    `json:"device_id,omitempty"`
	StudentID string    `json:"student_id,omitempty"`
	LocalUser bool      `json:"local_user,omitempty"`
	Admin     bool      `json:"admin,omitempty"`
	TriesLeft int       `json:"tries_left"`
	Banned    bool      `json:"banned,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Registered reports whether the session's device is linked to a student.
func (s *Session) Registered() bool {
	return s.StudentID != ""
}

// Store persists sessions.
type Store interface {
	Get(ctx context.Context, token string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	New(ctx context.Context) (*Session, error)
}

// RedisStore keeps JSON-encoded sessions in Redis with a sliding TTL. New
// sessions start with the configured login retry budget.
type RedisStore struct {
	client     *redis.Client
	ttl        time.Duration
	loginTries int
}

// NewRedisStore constructs a RedisStore.
func NewRedisStore(client *redis.Client, ttl time.Duration, loginTries int) *RedisStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if loginTries <= 0 {
		loginTries = 5
	}
	return &RedisStore{client: client, ttl: ttl, loginTries: loginTries}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Get loads the session for a token.
func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess := &Session{}
	if err := json.Unmarshal(raw, sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	sess.Token = token
	return sess, nil
}

// Save writes the session back and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.Token), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// New creates and persists a fresh session with a random opaque token and
// the full login retry budget.
func (s *RedisStore) New(ctx context.Context) (*Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	sess := &Session{
		Token:     token,
		TriesLeft: s.loginTries,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
