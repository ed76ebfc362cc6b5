// Package store persists the feed's documents: accounts, user profiles,
// posts and saved-post join records.
package store

import (
	"errors"

	"snapfeed/pkg/domain"
)

// ErrCursorNotFound is returned by ListPostsAfter when the cursor does not
// name an existing post.
var ErrCursorNotFound = errors.New("cursor post not found")

// Store defines persistence operations for the feed's documents.
type Store interface {
	// accounts
	SaveAccount(domain.Account) error
	HasAccountEmail(email string) (bool, error)
	GetAccountByEmail(email string) (domain.Account, bool, error)
	GetAccountByID(id string) (domain.Account, bool, error)

	// user profiles
	SaveUser(domain.UserProfile) error
	GetUserByID(id string) (domain.UserProfile, bool, error)
	GetUserByAccountID(accountID string) (domain.UserProfile, bool, error)
	ListUsers() ([]domain.UserProfile, error)

	// posts
	SavePost(domain.Post) error
	GetPost(id string) (domain.Post, bool, error)
	DeletePost(id string) error
	SetPostLikes(id string, likes []string) error
	ListRecentPosts(limit int) ([]domain.Post, error)
	ListPostsAfter(cursor string, limit int) ([]domain.Post, error)
	SearchPosts(term string) ([]domain.Post, error)

	// saved posts
	SaveSavedPost(domain.SavedPost) error
	GetSavedPost(id string) (domain.SavedPost, bool, error)
	DeleteSavedPost(id string) error
	ListSavedPostsByUser(userID string) ([]domain.SavedPost, error)
}

// SessionStore persists session tokens.
type SessionStore interface {
	NewSession(accountID string) (string, error)
	GetAccountIDByToken(token string) (string, bool, error)
	DeleteSession(token string) error
}
