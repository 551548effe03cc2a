package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rsinghal/loan-desk-api/internal/domain"
)

func (s *Store) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return nil, &domain.ErrConflict{Message: "username already exists"}
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return nil, &domain.ErrConflict{Message: "email already exists"}
		}
	}

	created := *user
	if created.ID == "" {
		created.ID = newID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = s.now()
	}
	s.users[created.ID] = created
	return &created, nil
}

func (s *Store) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: email}
}

// GetUserByUsername resolves login credentials.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			found := u
			return &found, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "user", ID: username}
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return nil, &domain.ErrNotFound{Resource: "user", ID: user.ID}
	}
	for id, existing := range s.users {
		if id == user.ID {
			continue
		}
		if strings.EqualFold(existing.Username, user.Username) {
			return nil, &domain.ErrConflict{Message: "username already exists"}
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return nil, &domain.ErrConflict{Message: "email already exists"}
		}
	}

	updated := *user
	s.users[updated.ID] = updated
	return &updated, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return &domain.ErrNotFound{Resource: "user", ID: userID}
	}
	delete(s.users, userID)
	return nil
}

// ============================================================
// Refresh tokens
// ============================================================

func (s *Store) SaveRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refreshTokens[token.TokenHash] = *token
	return nil
}

func (s *Store) GetRefreshToken(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.refreshTokens[tokenHash]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "refresh token", ID: tokenHash}
	}
	return &t, nil
}

func (s *Store) DeleteRefreshToken(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.refreshTokens, tokenHash)
	return nil
}

func (s *Store) DeleteExpiredTokens(ctx context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for hash, t := range s.refreshTokens {
		if t.ExpiresAt.Before(before) {
			delete(s.refreshTokens, hash)
		}
	}
	return nil
}
