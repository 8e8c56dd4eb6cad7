// Package auth gates the dashboard behind a shared login password.
//
// Sessions are opaque random tokens in a cookie. A token is accepted if it
// has the right length; tokens are not recorded server side.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// LoginPasswordKey is the store key of the shared login password.
	LoginPasswordKey = "login_password"
	// CookieName carries the session token.
	CookieName = "auth_token"
	// TokenLength is the hex length of a session token.
	TokenLength = 64

	tokenBytes    = TokenLength / 2
	defaultMaxAge = 24 * time.Hour
)

var (
	ErrInvalidPassword      = errors.New("invalid login password")
	ErrInvalidAdminPassword = errors.New("invalid admin password")
	ErrInvalidLoginPassword = errors.New("invalid current login password")
	ErrEmptyPassword        = errors.New("new password is empty")
	ErrStoreUpdate          = errors.New("password store update failed")
)

// User-facing messages returned by the auth endpoints.
const (
	MsgInvalidPassword      = "パスワードが間違っています。"
	MsgInvalidAdminPassword = "管理者パスワードが間違っています。"
	MsgInvalidLoginPassword = "現在のログインパスワードが間違っています。"
	MsgEmptyPassword        = "新しいパスワードを入力してください。"
	MsgPasswordUpdated      = "ログインパスワードが正常に更新されました！即座に有効になります。"
	MsgStoreUpdate          = "データベース更新に失敗しました。"
	MsgServerError          = "サーバエラーが発生しました。"
	MsgTooManyAttempts      = "ログイン試行回数が多すぎます。しばらくしてから再度お試しください。"
)

// Message maps an auth error to the text shown to the user.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPassword):
		return MsgInvalidPassword
	case errors.Is(err, ErrInvalidAdminPassword):
		return MsgInvalidAdminPassword
	case errors.Is(err, ErrInvalidLoginPassword):
		return MsgInvalidLoginPassword
	case errors.Is(err, ErrEmptyPassword):
		return MsgEmptyPassword
	case errors.Is(err, ErrStoreUpdate):
		return MsgStoreUpdate
	}
	return MsgServerError
}

// Config holds the credentials and cookie settings.
type Config struct {
	// DefaultLoginPassword is used when the store has no value or fails.
	DefaultLoginPassword string
	// AdminPassword authorizes login password changes. It never changes at runtime.
	AdminPassword string
	// SecureCookie sets the Secure attribute. Turn off only for plain HTTP development.
	SecureCookie bool
	MaxAge       time.Duration
}

// Session is a freshly minted login.
type Session struct {
	Token  string
	Cookie *http.Cookie
}

// Authenticator checks passwords against a PasswordStore and mints sessions.
type Authenticator struct {
	store  PasswordStore
	cfg    Config
	random io.Reader
}

// New creates an Authenticator.
func New(store PasswordStore, cfg Config) *Authenticator {
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaultMaxAge
	}
	return &Authenticator{store: store, cfg: cfg, random: rand.Reader}
}

func (a *Authenticator) loginPassword(ctx context.Context) string {
	return a.store.Get(ctx, LoginPasswordKey, a.cfg.DefaultLoginPassword)
}

// Login mints a session when password matches the stored login password.
func (a *Authenticator) Login(ctx context.Context, password string) (Session, error) {
	if password != a.loginPassword(ctx) {
		return Session{}, ErrInvalidPassword
	}
	token, err := NewToken(a.random)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, Cookie: a.cookie(token)}, nil
}

func (a *Authenticator) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(a.cfg.MaxAge / time.Second),
		HttpOnly: true,
		Secure:   a.cfg.SecureCookie,
		SameSite: http.SameSiteStrictMode,
	}
}

// ChangePassword replaces the login password. The store is written only
// after both the admin and the current login password check out.
func (a *Authenticator) ChangePassword(ctx context.Context, adminPassword, oldPassword, newPassword string) error {
	if adminPassword != a.cfg.AdminPassword {
		return ErrInvalidAdminPassword
	}
	if oldPassword != a.loginPassword(ctx) {
		return ErrInvalidLoginPassword
	}
	if newPassword == "" {
		return ErrEmptyPassword
	}
	if !a.store.Set(ctx, LoginPasswordKey, newPassword) {
		return ErrStoreUpdate
	}
	slog.Info("login password updated")
	return nil
}

// NewToken returns 32 random bytes as lowercase hex.
func NewToken(r io.Reader) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ValidToken only checks the length. Any 64 character value passes.
func ValidToken(token string) bool {
	return len(token) == TokenLength
}
