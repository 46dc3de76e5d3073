package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/streakboard/streakboard-server/internal/domain"
	"github.com/streakboard/streakboard-server/internal/store"
)

var errSessionExists = store.ErrAlreadyExists.WithMessage("session already exists")

func sessionKey(id string) []byte {
	return []byte(sessionPrefix + id)
}

func tokenKey(hash string) []byte {
	return []byte(sessionByTokenPrefix + hash)
}

func userIndexKey(userID, sessionID string) []byte {
	return []byte(sessionByUserPrefix + userID + ":" + sessionID)
}

// CreateSession creates a new user session.
func (s *Store) CreateSession(_ context.Context, session *domain.Session) error {
	key := sessionKey(session.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if exists {
		return errSessionExists
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set(tokenKey(session.RefreshTokenHash), []byte(session.ID)); err != nil {
			return err
		}
		return txn.Set(userIndexKey(session.UserID, session.ID), []byte{})
	})
}

// GetSession retrieves a live session by ID.
// Returns store.ErrSessionExpired once ExpiresAt has passed.
func (s *Store) GetSession(_ context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	if err := s.get(sessionKey(id), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.IsExpired(s.now()) {
		return nil, store.ErrSessionExpired
	}

	return &session, nil
}

// GetSessionByRefreshToken retrieves a session by its refresh token hash.
func (s *Store) GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var sessionID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(tokenHash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			sessionID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, store.ErrSessionNotFound
		}
		return nil, fmt.Errorf("lookup session by token: %w", err)
	}

	return s.GetSession(ctx, sessionID)
}

// UpdateSession saves a session, moving the token index when the refresh token rotated.
func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	old, err := s.GetSession(ctx, session.ID)
	if err != nil {
		return err
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(sessionKey(session.ID), data); err != nil {
			return err
		}

		if old.RefreshTokenHash == session.RefreshTokenHash {
			return nil
		}
		if err := txn.Delete(tokenKey(old.RefreshTokenHash)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(tokenKey(session.RefreshTokenHash), []byte(session.ID))
	})
}

// DeleteSession deletes a session and its indexes. Deleting a missing session is a no-op.
func (s *Store) DeleteSession(_ context.Context, sessionID string) error {
	// Read raw so expired sessions are cleaned up too.
	var session domain.Session
	if err := s.get(sessionKey(sessionID), &session); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("get session for deletion: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sessionKey(sessionID)); err != nil {
			return err
		}
		if err := txn.Delete(tokenKey(session.RefreshTokenHash)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete(userIndexKey(session.UserID, sessionID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// userSessionIDs returns every session ID indexed under userID, expired or not.
func (s *Store) userSessionIDs(userID string) ([]string, error) {
	prefix := []byte(sessionByUserPrefix + userID + ":")
	var ids []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), string(prefix)))
		}
		return nil
	})
	return ids, err
}

// ListUserSessions returns all unexpired sessions for a user.
func (s *Store) ListUserSessions(ctx context.Context, userID string) ([]*domain.Session, error) {
	ids, err := s.userSessionIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(ids))
	for _, id := range ids {
		session, err := s.GetSession(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrSessionExpired) || errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("list user sessions: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// DeleteAllUserSessions removes every session for a user, including expired ones.
// Used when an account is deleted.
func (s *Store) DeleteAllUserSessions(ctx context.Context, userID string) error {
	ids, err := s.userSessionIDs(userID)
	if err != nil {
		return fmt.Errorf("list sessions for deletion: %w", err)
	}

	for _, id := range ids {
		if err := s.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("delete session %s: %w", id, err)
		}
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions and returns how many it found.
func (s *Store) DeleteExpiredSessions(ctx context.Context) (int, error) {
	prefix := []byte(sessionPrefix)
	now := s.now()
	var expiredIDs []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var session domain.Session
				if err := json.Unmarshal(val, &session); err != nil {
					//nolint:nilerr // skip malformed sessions
					return nil
				}
				if session.IsExpired(now) {
					expiredIDs = append(expiredIDs, session.ID)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("find expired sessions: %w", err)
	}

	for _, id := range expiredIDs {
		if err := s.DeleteSession(ctx, id); err != nil && s.logger != nil {
			s.logger.Warn("failed to delete expired session", "session_id", id, "error", err)
		}
	}

	return len(expiredIDs), nil
}
