package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"snapfeed/internal/storage"
	"snapfeed/internal/store"
	"snapfeed/pkg/domain"
)

// failingStore wraps the in-memory store so individual writes can be made
// to fail mid-workflow.
type failingStore struct {
	*store.MemoryStore
	savePostErr error
}

func (f *failingStore) SavePost(p domain.Post) error {
	if f.savePostErr != nil {
		return f.savePostErr
	}
	return f.MemoryStore.SavePost(p)
}

func newTestApp(t *testing.T) (*App, *failingStore, *storage.MemoryStore) {
	t.Helper()
	st := &failingStore{MemoryStore: store.NewMemoryStore()}
	objects := storage.NewMemoryStore()
	a, err := New(Config{
		Store:         st,
		Sessions:      store.NewMemorySessionStore(),
		Objects:       objects,
		PublicBaseURL: "http://localhost:8080",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, st, objects
}

func testUpload(body string) Upload {
	return Upload{
		Name:        "shot.png",
		Reader:      bytes.NewReader([]byte(body)),
		Size:        int64(len(body)),
		ContentType: "image/png",
	}
}

func TestSignupSignInAndSignOut(t *testing.T) {
	a, _, objects := newTestApp(t)
	ctx := context.Background()

	profile, err := a.CreateAccount(ctx, "Ada@Example.com", "Str0ng!Pass#1", "Ada Lovelace", "ada")
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if profile.Email != "ada@example.com" {
		t.Fatalf("email not normalized: %q", profile.Email)
	}
	if !strings.Contains(profile.ImageURL, "/v1/avatars/") {
		t.Fatalf("unexpected avatar URL %q", profile.ImageURL)
	}
	if objects.Len() != 1 {
		t.Fatalf("expected 1 stored avatar, got %d", objects.Len())
	}

	sess, err := a.SignIn(ctx, "ada@example.com", "Str0ng!Pass#1")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	got, err := a.CurrentUser(ctx, sess.Token)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if got.ID != profile.ID {
		t.Fatalf("got profile %s, want %s", got.ID, profile.ID)
	}

	if err := a.SignOut(ctx, sess.Token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if _, err := a.CurrentAccount(ctx, sess.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("after sign-out got %v, want ErrUnauthenticated", err)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	if _, err := a.CreateAccount(ctx, "bob@example.com", "Str0ng!Pass#1", "Bob", "bob"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := a.SignIn(ctx, "bob@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.SignIn(ctx, "nobody@example.com", "Str0ng!Pass#1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	if _, err := a.CreateAccount(ctx, "not-an-email", "Str0ng!Pass#1", "X", "x"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("bad email: got %v, want ErrInvalidArgument", err)
	}
	if _, err := a.CreateAccount(ctx, "x@example.com", "short", "X", "x"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("weak password: got %v, want ErrInvalidArgument", err)
	}
	if _, err := a.CreateAccount(ctx, "x@example.com", "Str0ng!Pass#1", "X", "x"); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := a.CreateAccount(ctx, "x@example.com", "Str0ng!Pass#1", "X2", "x2"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email: got %v, want ErrEmailTaken", err)
	}
}

func TestCreatePost(t *testing.T) {
	a, _, objects := newTestApp(t)
	ctx := context.Background()

	post, err := a.CreatePost(ctx, PostInput{
		CreatorID: "user-1",
		Caption:   "golden hour",
		Location:  "Lisbon",
		Tags:      "sunset, beach ,  ",
		Image:     testUpload("image-bytes"),
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if want := []string{"sunset", "beach"}; len(post.Tags) != 2 || post.Tags[0] != want[0] || post.Tags[1] != want[1] {
		t.Fatalf("tags = %v, want %v", post.Tags, want)
	}
	if post.Likes == nil || len(post.Likes) != 0 {
		t.Fatalf("new post likes = %v, want empty list", post.Likes)
	}
	if !strings.Contains(post.ImageURL, "/preview?width=2000&height=2000") {
		t.Fatalf("unexpected image URL %q", post.ImageURL)
	}
	if objects.Len() != 1 {
		t.Fatalf("expected 1 stored object, got %d", objects.Len())
	}
	got, err := a.PostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("PostByID: %v", err)
	}
	if got.Caption != "golden hour" {
		t.Fatalf("caption = %q", got.Caption)
	}
}

func TestCreatePostDeletesUploadOnDocumentFailure(t *testing.T) {
	a, st, objects := newTestApp(t)
	st.savePostErr = fmt.Errorf("database down")

	_, err := a.CreatePost(context.Background(), PostInput{
		CreatorID: "user-1",
		Caption:   "doomed",
		Image:     testUpload("image-bytes"),
	})
	if err == nil || !strings.Contains(err.Error(), "database down") {
		t.Fatalf("got %v, want the document write failure", err)
	}
	if objects.Len() != 0 {
		t.Fatalf("expected uploaded image removed, %d objects remain", objects.Len())
	}
	if n := objects.DeleteCalls(); n != 1 {
		t.Fatalf("upload deleted %d times, want exactly once", n)
	}
}

func TestCreatePostDeletesUploadOnPreviewFailure(t *testing.T) {
	a, _, objects := newTestApp(t)
	objects.StatErr = fmt.Errorf("object store unavailable")

	_, err := a.CreatePost(context.Background(), PostInput{
		CreatorID: "user-1",
		Image:     testUpload("image-bytes"),
	})
	if err == nil {
		t.Fatal("expected error when preview derivation fails")
	}
	if n := objects.DeleteCalls(); n != 1 {
		t.Fatalf("upload deleted %d times, want exactly once", n)
	}
}

func TestUpdatePostReplacesImageAndCompensates(t *testing.T) {
	a, st, objects := newTestApp(t)
	ctx := context.Background()

	post, err := a.CreatePost(ctx, PostInput{CreatorID: "user-1", Caption: "v1", Image: testUpload("old")})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	newImg := testUpload("new")
	updated, err := a.UpdatePost(ctx, UpdatePostInput{PostID: post.ID, Caption: "v2", NewImage: &newImg})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.ImageID == post.ImageID {
		t.Fatal("image ID unchanged after replacement")
	}
	if updated.Caption != "v2" {
		t.Fatalf("caption = %q", updated.Caption)
	}
	if updated.CreatedAt != post.CreatedAt {
		t.Fatal("update must preserve creation time")
	}

	// A failed replacement removes only the freshly uploaded image.
	st.savePostErr = fmt.Errorf("database down")
	before := objects.Len()
	img := testUpload("newer")
	if _, err := a.UpdatePost(ctx, UpdatePostInput{PostID: post.ID, Caption: "v3", NewImage: &img}); err == nil {
		t.Fatal("expected document write failure")
	}
	if objects.Len() != before {
		t.Fatalf("object count changed from %d to %d", before, objects.Len())
	}
	current, err := a.PostByID(ctx, post.ID)
	if err != nil {
		t.Fatalf("PostByID: %v", err)
	}
	if current.Caption != "v2" {
		t.Fatalf("post mutated by failed update: caption %q", current.Caption)
	}
}

func TestUpdatePostWithoutNewImageKeepsExisting(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	post, err := a.CreatePost(ctx, PostInput{CreatorID: "user-1", Caption: "v1", Image: testUpload("old")})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	updated, err := a.UpdatePost(ctx, UpdatePostInput{PostID: post.ID, Caption: "v2"})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if updated.ImageID != post.ImageID || updated.ImageURL != post.ImageURL {
		t.Fatal("image changed on a text-only update")
	}
}

func TestDeletePostRequiresBothIdentifiers(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()
	if err := a.DeletePost(ctx, "", "img-1"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing post id: got %v, want ErrInvalidArgument", err)
	}
	if err := a.DeletePost(ctx, "post-1", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("missing image id: got %v, want ErrInvalidArgument", err)
	}
}

func TestDeletePostLeavesImageInPlace(t *testing.T) {
	a, _, objects := newTestApp(t)
	ctx := context.Background()

	post, err := a.CreatePost(ctx, PostInput{CreatorID: "user-1", Image: testUpload("keep-me")})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if err := a.DeletePost(ctx, post.ID, post.ImageID); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if _, err := a.PostByID(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("post still readable: %v", err)
	}
	if objects.Len() != 1 {
		t.Fatalf("image object count = %d, want 1 (image is retained)", objects.Len())
	}
	if n := objects.DeleteCalls(); n != 0 {
		t.Fatalf("object store Delete called %d times, want 0", n)
	}
}

func TestLikePostOverwritesList(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	post, err := a.CreatePost(ctx, PostInput{CreatorID: "user-1", Image: testUpload("img")})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	liked, err := a.LikePost(ctx, post.ID, []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if len(liked.Likes) != 2 {
		t.Fatalf("likes = %v", liked.Likes)
	}
	liked, err = a.LikePost(ctx, post.ID, []string{"u2"})
	if err != nil {
		t.Fatalf("LikePost: %v", err)
	}
	if len(liked.Likes) != 1 || liked.Likes[0] != "u2" {
		t.Fatalf("likes = %v, want [u2]", liked.Likes)
	}
	if _, err := a.LikePost(ctx, "missing", []string{"u1"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing post: got %v, want ErrNotFound", err)
	}
}

func TestSavedPostLifecycle(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	saved, err := a.SavePost(ctx, "user-1", "post-1")
	if err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	list, err := a.SavedPostsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("SavedPostsByUser: %v", err)
	}
	if len(list) != 1 || list[0].ID != saved.ID {
		t.Fatalf("saved list = %v", list)
	}
	if err := a.DeleteSavedPost(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteSavedPost: %v", err)
	}
	if err := a.DeleteSavedPost(ctx, saved.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestPostsPagination(t *testing.T) {
	a, st, _ := newTestApp(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		err := st.MemoryStore.SavePost(domain.Post{
			ID:        fmt.Sprintf("post-%03d", i),
			CreatorID: "user-1",
			Caption:   fmt.Sprintf("caption %d", i),
			CreatedAt: ts,
			UpdatedAt: ts,
		})
		if err != nil {
			t.Fatalf("seed post %d: %v", i, err)
		}
	}

	first, err := a.Posts(ctx, "")
	if err != nil {
		t.Fatalf("Posts: %v", err)
	}
	if len(first) != 20 {
		t.Fatalf("first page length = %d, want 20", len(first))
	}
	if first[0].ID != "post-024" {
		t.Fatalf("first page starts at %s, want post-024", first[0].ID)
	}

	second, err := a.Posts(ctx, first[len(first)-1].ID)
	if err != nil {
		t.Fatalf("Posts after cursor: %v", err)
	}
	if len(second) != 5 {
		t.Fatalf("second page length = %d, want 5", len(second))
	}
	if second[0].ID != "post-004" {
		t.Fatalf("second page starts at %s, want post-004", second[0].ID)
	}

	if _, err := a.Posts(ctx, "no-such-post"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown cursor: got %v, want ErrNotFound", err)
	}
}

func TestSearchPosts(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	for _, caption := range []string{"Morning coffee", "Evening run", "Coffee break"} {
		if _, err := a.CreatePost(ctx, PostInput{CreatorID: "u", Caption: caption, Image: testUpload("x")}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
	}
	hits, err := a.SearchPosts(ctx, "coffee")
	if err != nil {
		t.Fatalf("SearchPosts: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
}

func TestFilePreviewURL(t *testing.T) {
	a, _, _ := newTestApp(t)
	ctx := context.Background()

	file, err := a.UploadFile(ctx, testUpload("bytes"))
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	url, err := a.FilePreviewURL(ctx, file.ID)
	if err != nil {
		t.Fatalf("FilePreviewURL: %v", err)
	}
	want := fmt.Sprintf("http://localhost:8080/v1/files/%s/preview?width=2000&height=2000&gravity=top&quality=100", file.ID)
	if url != want {
		t.Fatalf("url = %q, want %q", url, want)
	}
	if _, err := a.FilePreviewURL(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing file: got %v, want ErrNotFound", err)
	}
}
