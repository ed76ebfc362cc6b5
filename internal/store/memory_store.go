package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"snapfeed/pkg/domain"
)

// MemoryStore keeps documents in-process. It is used by tests and local
// development and mirrors the GormStore's ordering semantics.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	emails   map[string]string // email -> account ID
	users    map[string]domain.UserProfile
	posts    map[string]domain.Post
	saves    map[string]domain.SavedPost
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string]domain.Account),
		emails:   make(map[string]string),
		users:    make(map[string]domain.UserProfile),
		posts:    make(map[string]domain.Post),
		saves:    make(map[string]domain.SavedPost),
	}
}

// SaveAccount registers or updates an account.
func (m *MemoryStore) SaveAccount(a domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[a.ID] = a
	m.emails[a.Email] = a.ID
	return nil
}

// HasAccountEmail checks if email exists.
func (m *MemoryStore) HasAccountEmail(email string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.emails[email]
	return ok, nil
}

// GetAccountByEmail looks up an account by email.
func (m *MemoryStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.emails[email]
	if !ok {
		return domain.Account{}, false, nil
	}
	a, ok := m.accounts[id]
	return a, ok, nil
}

// GetAccountByID returns an account by ID.
func (m *MemoryStore) GetAccountByID(id string) (domain.Account, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.accounts[id]
	return a, ok, nil
}

// SaveUser stores or updates a profile document.
func (m *MemoryStore) SaveUser(u domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// GetUserByID returns a profile by its document ID.
func (m *MemoryStore) GetUserByID(id string) (domain.UserProfile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// GetUserByAccountID returns the earliest profile bound to the account.
func (m *MemoryStore) GetUserByAccountID(accountID string) (domain.UserProfile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found domain.UserProfile
	var ok bool
	for _, u := range m.users {
		if u.AccountID != accountID {
			continue
		}
		if !ok || u.CreatedAt.Before(found.CreatedAt) {
			found = u
			ok = true
		}
	}
	return found, ok, nil
}

// ListUsers returns all profiles, newest first.
func (m *MemoryStore) ListUsers() ([]domain.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.UserProfile, 0, len(m.users))
	for _, u := range m.users {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

// SavePost stores or replaces a post document.
func (m *MemoryStore) SavePost(p domain.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[p.ID] = p
	return nil
}

// GetPost retrieves a post by ID.
func (m *MemoryStore) GetPost(id string) (domain.Post, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.posts[id]
	return p, ok, nil
}

// DeletePost removes a post document.
func (m *MemoryStore) DeletePost(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.posts, id)
	return nil
}

// SetPostLikes overwrites the like list and bumps the update time.
func (m *MemoryStore) SetPostLikes(id string, likes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil
	}
	p.Likes = likes
	p.UpdatedAt = time.Now().UTC()
	m.posts[id] = p
	return nil
}

// ListRecentPosts returns the newest posts by creation time.
func (m *MemoryStore) ListRecentPosts(limit int) ([]domain.Post, error) {
	posts := m.sortedPosts(func(a, b domain.Post) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// ListPostsAfter pages through posts in descending update-time order.
func (m *MemoryStore) ListPostsAfter(cursor string, limit int) ([]domain.Post, error) {
	posts := m.sortedPosts(byUpdatedDesc)
	start := 0
	if cursor != "" {
		found := false
		for i, p := range posts {
			if p.ID == cursor {
				start = i + 1
				found = true
				break
			}
		}
		if !found {
			return nil, ErrCursorNotFound
		}
	}
	posts = posts[start:]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

// SearchPosts matches the term against captions, case-insensitively.
func (m *MemoryStore) SearchPosts(term string) ([]domain.Post, error) {
	term = strings.ToLower(term)
	posts := m.sortedPosts(byUpdatedDesc)
	res := make([]domain.Post, 0)
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Caption), term) {
			res = append(res, p)
		}
	}
	return res, nil
}

// SaveSavedPost creates a join record.
func (m *MemoryStore) SaveSavedPost(sp domain.SavedPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[sp.ID] = sp
	return nil
}

// GetSavedPost retrieves a join record by ID.
func (m *MemoryStore) GetSavedPost(id string) (domain.SavedPost, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sp, ok := m.saves[id]
	return sp, ok, nil
}

// DeleteSavedPost removes a join record.
func (m *MemoryStore) DeleteSavedPost(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

// ListSavedPostsByUser returns the user's join records, newest first.
func (m *MemoryStore) ListSavedPostsByUser(userID string) ([]domain.SavedPost, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.SavedPost, 0)
	for _, sp := range m.saves {
		if sp.UserID == userID {
			res = append(res, sp)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (m *MemoryStore) sortedPosts(less func(a, b domain.Post) bool) []domain.Post {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Post, 0, len(m.posts))
	for _, p := range m.posts {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return less(res[i], res[j]) })
	return res
}

func byUpdatedDesc(a, b domain.Post) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID > b.ID
}

// MemorySessionStore keeps session tokens in-process.
type MemorySessionStore struct {
	mu   sync.Mutex
	sess map[string]string // token -> account ID
}

// NewMemorySessionStore initializes an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]string)}
}

// NewSession creates a session token for an account.
func (m *MemorySessionStore) NewSession(accountID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := NewToken()
	m.sess[token] = accountID
	return token, nil
}

// GetAccountIDByToken resolves a token.
func (m *MemorySessionStore) GetAccountIDByToken(token string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.sess[token]
	return id, ok, nil
}

// DeleteSession removes a token.
func (m *MemorySessionStore) DeleteSession(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}
