package database

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"photo-culler/internal/logging"
)

// Authentication errors.
var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidSession  = errors.New("invalid session")
	ErrSessionExpired  = errors.New("session expired")
	ErrNoUser          = errors.New("no user found")
)

// User represents the single user account in the system.
type User struct {
	ID           int64     `json:"id"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session represents an authenticated user session.
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionDuration is the length of time a session remains valid.
const SessionDuration = 7 * 24 * time.Hour

// GetSessionDuration returns how long new and extended sessions last.
func (d *Database) GetSessionDuration() time.Duration {
	return SessionDuration
}

func hashToken(token string) (string, error) {
	tokenBytes, err := hex.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: bad token format", ErrInvalidSession)
	}
	hash := sha256.Sum256(tokenBytes)
	return hex.EncodeToString(hash[:]), nil
}

// HasUsers checks if a user exists (single-user app).
func (d *Database) HasUsers(ctx context.Context) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return false
	}
	return count > 0
}

// CreateUser creates the single user with the given password.
func (d *Database) CreateUser(ctx context.Context, password string) (err error) {
	start := time.Now()
	defer func() { recordQuery("create_user", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = d.db.ExecContext(ctx, "INSERT INTO users (password_hash) VALUES (?)", string(hash))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// ValidatePassword checks the password and returns the user if valid.
func (d *Database) ValidatePassword(ctx context.Context, password string) (user *User, err error) {
	start := time.Now()
	defer func() { recordQuery("validate_password", start, err) }()

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u User
	var createdAt, updatedAt int64

	err = d.db.QueryRowContext(ctx,
		"SELECT id, password_hash, created_at, updated_at FROM users LIMIT 1",
	).Scan(&u.ID, &u.PasswordHash, &createdAt, &updatedAt)
	if err != nil {
		return nil, ErrInvalidPassword
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidPassword
	}

	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)
	return &u, nil
}

// CreateSession creates a new session for a user. The returned token is the
// only copy of the plaintext; the database stores its hash.
func (d *Database) CreateSession(ctx context.Context, userID int64) (session *Session, err error) {
	start := time.Now()
	defer func() { recordQuery("create_session", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tokenBytes := make([]byte, 32)
	if _, err = rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	hash := sha256.Sum256(tokenBytes)
	tokenHash := hex.EncodeToString(hash[:])
	token := hex.EncodeToString(tokenBytes)

	now := time.Now()
	expiresAt := now.Add(SessionDuration)

	result, err := d.db.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, expires_at) VALUES (?, ?, ?)",
		userID, tokenHash, expiresAt.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, _ := result.LastInsertId()

	return &Session{
		ID:        id,
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}, nil
}

// ValidateSession checks if a session token is valid and returns its user.
func (d *Database) ValidateSession(ctx context.Context, token string) (user *User, err error) {
	start := time.Now()
	defer func() { recordQuery("validate_session", start, err) }()

	tokenHash, err := hashToken(token)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u User
	var expiresAt, createdAt, updatedAt int64

	err = d.db.QueryRowContext(ctx, `
		SELECT u.id, u.created_at, u.updated_at, s.expires_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token = ?
	`, tokenHash).Scan(&u.ID, &createdAt, &updatedAt, &expiresAt)
	if err != nil {
		return nil, ErrInvalidSession
	}

	if time.Now().Unix() > expiresAt {
		go func() {
			if delErr := d.deleteSessionByHash(context.Background(), tokenHash); delErr != nil {
				logging.Error("failed to delete expired session: %v", delErr)
			}
		}()
		return nil, ErrSessionExpired
	}

	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)
	return &u, nil
}

// ExtendSession pushes a session's expiry to SessionDuration from now.
func (d *Database) ExtendSession(ctx context.Context, token string) (err error) {
	start := time.Now()
	defer func() { recordQuery("extend_session", start, err) }()

	tokenHash, err := hashToken(token)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx,
		"UPDATE sessions SET expires_at = ? WHERE token = ?",
		time.Now().Add(SessionDuration).Unix(), tokenHash,
	)
	return err
}

func (d *Database) deleteSessionByHash(ctx context.Context, tokenHash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", tokenHash)
	return err
}

// DeleteSession removes a session.
func (d *Database) DeleteSession(ctx context.Context, token string) error {
	tokenHash, err := hashToken(token)
	if err != nil {
		return err
	}
	return d.deleteSessionByHash(ctx, tokenHash)
}

// CleanExpiredSessions removes all expired sessions.
func (d *Database) CleanExpiredSessions(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { recordQuery("clean_expired_sessions", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().Unix())
	return err
}

// UpdatePassword updates the user's password and invalidates all sessions.
func (d *Database) UpdatePassword(ctx context.Context, newPassword string) (err error) {
	start := time.Now()
	defer func() { recordQuery("update_password", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := d.db.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, updated_at = strftime('%s', 'now')",
		string(hash),
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		err = ErrNoUser
		return err
	}

	if _, delErr := d.db.ExecContext(ctx, "DELETE FROM sessions"); delErr != nil {
		logging.Warn("failed to invalidate sessions: %v", delErr)
	}

	return nil
}
