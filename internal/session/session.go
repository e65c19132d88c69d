package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"retailops-dashboard/pkg/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("session", fx.Provide(NewStore))

const keyPrefix = "session"

// Session is the identity attached to an opaque token.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Store keeps sessions in redis under "session:{token}" with a TTL.
type Store struct {
	rdb *redis.Client
	cfg *config.Config
}

func NewStore(rdb *redis.Client, cfg *config.Config) *Store {
	return &Store{rdb: rdb, cfg: cfg}
}

func (s *Store) CookieName() string { return s.cfg.Session.CookieName }
func (s *Store) Secure() bool       { return s.cfg.Session.Secure }
func (s *Store) MaxAge() int        { return int(s.cfg.Session.TTL.Seconds()) }

// Create issues a new opaque token for the user.
func (s *Store) Create(ctx context.Context, userID, username string) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(Session{UserID: userID, Username: username})
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, buildKey(token), payload, s.cfg.Session.TTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Get resolves a token; (nil, nil) means the token is unknown or expired.
func (s *Store) Get(ctx context.Context, token string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, buildKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, buildKey(token)).Err()
}

func buildKey(token string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, token)
}
