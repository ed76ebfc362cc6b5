package store

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"snapfeed/pkg/domain"
)

func seedPosts(t *testing.T, s *MemoryStore, n int) []domain.Post {
	t.Helper()
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]domain.Post, 0, n)
	for i := 0; i < n; i++ {
		p := domain.Post{
			ID:        fmt.Sprintf("post-%03d", i),
			CreatorID: "user-1",
			Caption:   fmt.Sprintf("caption %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SavePost(p); err != nil {
			t.Fatalf("save post: %v", err)
		}
		posts = append(posts, p)
	}
	return posts
}

func TestMemoryStoreRecentPostsOrderAndLimit(t *testing.T) {
	s := NewMemoryStore()
	seedPosts(t, s, 25)

	recent, err := s.ListRecentPosts(20)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 20 {
		t.Fatalf("expected 20 posts, got %d", len(recent))
	}
	if recent[0].ID != "post-024" {
		t.Fatalf("expected newest first, got %s", recent[0].ID)
	}
	for i := 1; i < len(recent); i++ {
		if recent[i].CreatedAt.After(recent[i-1].CreatedAt) {
			t.Fatalf("posts not in descending creation order at %d", i)
		}
	}
}

func TestMemoryStorePostsAfterCursor(t *testing.T) {
	s := NewMemoryStore()
	seedPosts(t, s, 25)

	first, err := s.ListPostsAfter("", 20)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 20 {
		t.Fatalf("expected 20 posts, got %d", len(first))
	}

	second, err := s.ListPostsAfter(first[len(first)-1].ID, 20)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 5 {
		t.Fatalf("expected the remaining 5 posts, got %d", len(second))
	}
	// The second page starts with post 21 in descending update order.
	if second[0].ID != "post-004" {
		t.Fatalf("unexpected start of second page: %s", second[0].ID)
	}
	if _, err := s.ListPostsAfter("no-such-post", 20); !errors.Is(err, ErrCursorNotFound) {
		t.Fatalf("expected ErrCursorNotFound, got %v", err)
	}
}

func TestMemoryStoreLikeBumpsUpdateOrder(t *testing.T) {
	s := NewMemoryStore()
	seedPosts(t, s, 3)

	if err := s.SetPostLikes("post-000", []string{"user-9"}); err != nil {
		t.Fatalf("set likes: %v", err)
	}
	page, err := s.ListPostsAfter("", 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page[0].ID != "post-000" {
		t.Fatalf("expected liked post to lead the feed, got %s", page[0].ID)
	}
	if len(page[0].Likes) != 1 || page[0].Likes[0] != "user-9" {
		t.Fatalf("unexpected like list: %v", page[0].Likes)
	}
}

func TestMemoryStoreSearchPosts(t *testing.T) {
	s := NewMemoryStore()
	if err := s.SavePost(domain.Post{ID: "a", Caption: "Sunset at the beach", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SavePost(domain.Post{ID: "b", Caption: "mountain trail", UpdatedAt: time.Now()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	hits, err := s.SearchPosts("BEACH")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "a" {
		t.Fatalf("unexpected hits: %v", hits)
	}
	none, err := s.SearchPosts("desert")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no hits, got %v", none)
	}
}

func TestMemoryStoreUsersNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := s.SaveUser(domain.UserProfile{
			ID:        fmt.Sprintf("user-%d", i),
			AccountID: fmt.Sprintf("acct-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("save user: %v", err)
		}
	}
	users, err := s.ListUsers()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 3 || users[0].ID != "user-2" {
		t.Fatalf("unexpected user order: %v", users)
	}
}

func TestMemoryStoreFirstProfileWins(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	_ = s.SaveUser(domain.UserProfile{ID: "later", AccountID: "acct-1", CreatedAt: base.Add(time.Hour)})
	_ = s.SaveUser(domain.UserProfile{ID: "earlier", AccountID: "acct-1", CreatedAt: base})

	u, ok, err := s.GetUserByAccountID("acct-1")
	if err != nil || !ok {
		t.Fatalf("lookup failed: ok=%v err=%v", ok, err)
	}
	if u.ID != "earlier" {
		t.Fatalf("expected earliest profile, got %s", u.ID)
	}
}
