package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/lifecoach/std/v1/database"
	"github.com/lifecoach/std/v1/sqlbind"
)

const upsertUser = `INSERT INTO users (google_id, email, name, picture, session_token)
VALUES (@google_id, @email, @name, @picture, @session_token)
ON CONFLICT(google_id) DO UPDATE SET
    session_token = @session_token,
    name = @name,
    picture = @picture,
    email = COALESCE(NULLIF(@email, ''), users.email)
RETURNING *`

// UpsertUser signs a user in. A new account is created on first sign-in;
// afterwards name and picture are refreshed and the email only changes when
// the provider supplied one. Every call issues a fresh session token.
func (s *Store) UpsertUser(ctx context.Context, g GoogleUser) (User, error) {
	if g.GoogleID == "" {
		return User{}, fmt.Errorf("%w: google id is required", ErrInvalidInput)
	}
	name := g.Name
	if name == "" {
		name = "Unknown"
	}
	previous := s.previousToken(ctx, g.GoogleID)

	row, found, err := s.db.GetOne(ctx, upsertUser, sqlbind.Named{
		"google_id":     g.GoogleID,
		"email":         g.Email,
		"name":          name,
		"picture":       nullable(g.Picture),
		"session_token": uuid.NewString(),
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to upsert user: %w", err)
	}
	if !found {
		return User{}, fmt.Errorf("failed to upsert user: no row returned")
	}
	user, err := userFromRow(row)
	if err != nil {
		return User{}, err
	}
	if previous != "" {
		s.forgetSession(ctx, previous)
	}
	s.logger.Debug("user signed in", nil, map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// UserBySessionToken resolves a session token to its user.
func (s *Store) UserBySessionToken(ctx context.Context, token string) (User, bool, error) {
	if token == "" {
		return User{}, false, nil
	}
	if user, ok := s.cachedSession(ctx, token); ok {
		return user, true, nil
	}
	user, found, err := s.oneUser(ctx, "SELECT * FROM users WHERE session_token = ?", token)
	if err != nil || !found {
		return user, found, err
	}
	s.cacheSession(ctx, user)
	return user, true, nil
}

// UserByID returns a user by primary key.
func (s *Store) UserByID(ctx context.Context, id int64) (User, bool, error) {
	return s.oneUser(ctx, "SELECT * FROM users WHERE id = ?", id)
}

func (s *Store) oneUser(ctx context.Context, query string, arg any) (User, bool, error) {
	row, found, err := s.db.GetOne(ctx, query, arg)
	if err != nil {
		return User{}, false, fmt.Errorf("failed to load user: %w", err)
	}
	if !found {
		return User{}, false, nil
	}
	user, err := userFromRow(row)
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

func userFromRow(row database.Row) (User, error) {
	f := fields{row: row}
	u := User{
		ID:           f.int64("id"),
		GoogleID:     f.string("google_id"),
		Email:        f.string("email"),
		Name:         f.string("name"),
		Picture:      f.string("picture"),
		SessionToken: f.string("session_token"),
	}
	if f.err != nil {
		return User{}, fmt.Errorf("failed to read user: %w", f.err)
	}
	return u, nil
}

func sessionKey(token string) string {
	return "session:" + token
}

// previousToken returns the token a sign-in is about to replace. It is only
// looked up when a cache may still hold it.
func (s *Store) previousToken(ctx context.Context, googleID string) string {
	if s.sessions == nil {
		return ""
	}
	row, found, err := s.db.GetOne(ctx, "SELECT session_token FROM users WHERE google_id = ?", googleID)
	if err != nil || !found {
		return ""
	}
	return row.String("session_token")
}

func (s *Store) cachedSession(ctx context.Context, token string) (User, bool) {
	if s.sessions == nil {
		return User{}, false
	}
	raw, found, err := s.sessions.Load(ctx, sessionKey(token))
	if err != nil {
		s.logger.Warn("session cache lookup failed", err)
		return User{}, false
	}
	if !found {
		return User{}, false
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil || user.SessionToken != token {
		s.forgetSession(ctx, token)
		return User{}, false
	}
	return user, true
}

func (s *Store) cacheSession(ctx context.Context, user User) {
	if s.sessions == nil {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.sessions.Store(ctx, sessionKey(user.SessionToken), raw); err != nil {
		s.logger.Warn("session cache store failed", err, map[string]interface{}{"user_id": user.ID})
	}
}

func (s *Store) forgetSession(ctx context.Context, token string) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.Forget(ctx, sessionKey(token)); err != nil {
		s.logger.Warn("session cache invalidation failed", err)
	}
}
