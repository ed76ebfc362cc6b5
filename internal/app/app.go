// Package app is the backend gateway: a stateless collection of operations
// translating application intents (sign in, create a post, like a post)
// into calls against the injected document, session and object stores.
package app

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"snapfeed/internal/avatar"
	"snapfeed/internal/storage"
	"snapfeed/internal/store"
	"snapfeed/internal/util"
	"snapfeed/pkg/auth"
	"snapfeed/pkg/domain"
)

// Config holds runtime configuration for the gateway core.
type Config struct {
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	JWTSecret     string
	PublicBaseURL string

	// Injected handles; when nil they are built from the settings above.
	Store    store.Store
	Sessions store.SessionStore
	Objects  storage.ObjectStore
}

// App wires the gateway operations to their backing stores. Every operation
// is a single linear request or a short sequence with best-effort cleanup;
// the App itself holds no per-request state.
type App struct {
	store    store.Store
	sessions store.SessionStore
	objects  storage.ObjectStore
	baseURL  string
}

// New constructs the gateway. The object store is always injected; the
// document and session stores fall back to Postgres and Redis/JWT built
// from the config.
func New(cfg Config) (*App, error) {
	if cfg.Objects == nil {
		return nil, fmt.Errorf("object store required")
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	sessionStore := cfg.Sessions
	if sessionStore == nil {
		switch {
		case cfg.RedisAddr != "":
			sessionStore = store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionTTL)
		case cfg.JWTSecret != "":
			sessionStore = store.NewJWTSessionStore(cfg.JWTSecret, cfg.SessionTTL)
		default:
			return nil, fmt.Errorf("session store required (redisAddr or jwtSecret)")
		}
	}

	return &App{
		store:    dataStore,
		sessions: sessionStore,
		objects:  cfg.Objects,
		baseURL:  strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Session is an authenticated session handle issued at sign-in.
type Session struct {
	Token     string `json:"token"`
	AccountID string `json:"accountId"`
}

// CreateAccount registers an account, renders its initials avatar into the
// object bucket and creates the profile document referencing the account.
// There is no compensation here: a failure after the account write leaves
// an account without a profile.
func (a *App) CreateAccount(ctx context.Context, email, password, name, username string) (domain.UserProfile, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.UserProfile{}, fmt.Errorf("%w: email %q is not valid", ErrInvalidArgument, email)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.UserProfile{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	taken, err := a.store.HasAccountEmail(email)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return domain.UserProfile{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("hash password: %w", err)
	}
	account := domain.Account{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}
	if err := a.store.SaveAccount(account); err != nil {
		return domain.UserProfile{}, fmt.Errorf("save account: %w", err)
	}

	imageURL, err := a.storeAvatar(ctx, account.ID, name)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return a.CreateUserProfile(ctx, account.ID, email, name, imageURL, username)
}

// CreateUserProfile stores a profile document keyed by a fresh identifier.
func (a *App) CreateUserProfile(_ context.Context, accountID, email, name, imageURL, username string) (domain.UserProfile, error) {
	profile := domain.UserProfile{
		ID:        util.NewID(),
		AccountID: accountID,
		Email:     email,
		Name:      name,
		Username:  username,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveUser(profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

func (a *App) storeAvatar(ctx context.Context, accountID, name string) (string, error) {
	rendered := avatar.Render(name)
	key := avatarKey(accountID)
	err := a.objects.Put(ctx, key, bytes.NewReader(rendered), int64(len(rendered)), avatar.ContentType)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}
	return a.baseURL + "/v1/avatars/" + accountID, nil
}

// SignIn validates credentials and creates an authenticated session.
func (a *App) SignIn(_ context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	account, ok, err := a.store.GetAccountByEmail(email)
	if err != nil {
		return Session{}, fmt.Errorf("fetch account: %w", err)
	}
	if !ok || !auth.CheckPassword(password, account.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(account.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue session: %w", err)
	}
	return Session{Token: token, AccountID: account.ID}, nil
}

// CurrentAccount resolves the account bound to the session token.
func (a *App) CurrentAccount(_ context.Context, token string) (domain.Account, error) {
	accountID, ok, err := a.sessions.GetAccountIDByToken(token)
	if err != nil || !ok {
		return domain.Account{}, ErrUnauthenticated
	}
	account, found, err := a.store.GetAccountByID(accountID)
	if err != nil {
		return domain.Account{}, fmt.Errorf("fetch account: %w", err)
	}
	if !found {
		return domain.Account{}, ErrUnauthenticated
	}
	return account, nil
}

// CurrentUser resolves the session's account, then the first profile whose
// account reference matches.
func (a *App) CurrentUser(ctx context.Context, token string) (domain.UserProfile, error) {
	account, err := a.CurrentAccount(ctx, token)
	if err != nil {
		return domain.UserProfile{}, err
	}
	profile, ok, err := a.store.GetUserByAccountID(account.ID)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("fetch profile: %w", err)
	}
	if !ok {
		return domain.UserProfile{}, ErrNotFound
	}
	return profile, nil
}

// SignOut deletes the session. Client-held state is the caller's to clear.
func (a *App) SignOut(_ context.Context, token string) error {
	return a.sessions.DeleteSession(token)
}

// Users lists all profiles, newest first.
func (a *App) Users(_ context.Context) ([]domain.UserProfile, error) {
	return a.store.ListUsers()
}

func avatarKey(accountID string) string {
	return "avatars/" + accountID + ".svg"
}

func fileKey(fileID string) string {
	return "files/" + fileID
}
