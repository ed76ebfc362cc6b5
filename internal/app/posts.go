package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snapfeed/internal/format"
	"snapfeed/internal/store"
	"snapfeed/internal/util"
	"snapfeed/pkg/domain"
)

// feedPageSize is the page length of the home feed, the infinite-scroll
// feed and saved-post listings.
const feedPageSize = 20

// PostInput carries the fields of a post creation request.
type PostInput struct {
	CreatorID string
	Caption   string
	Location  string
	Tags      string
	Image     Upload
}

// UpdatePostInput carries the fields of a post update request. NewImage is
// nil when the existing image is kept.
type UpdatePostInput struct {
	PostID   string
	Caption  string
	Location string
	Tags     string
	NewImage *Upload
}

// CreatePost uploads the image, derives its preview URL and writes the post
// document. If the document write fails the uploaded image is deleted so
// the failure leaves nothing behind.
func (a *App) CreatePost(ctx context.Context, in PostInput) (domain.Post, error) {
	if in.CreatorID == "" {
		return domain.Post{}, fmt.Errorf("%w: creator id required", ErrInvalidArgument)
	}
	if in.Image.Reader == nil {
		return domain.Post{}, fmt.Errorf("%w: post image required", ErrInvalidArgument)
	}
	staged, err := a.stageImage(ctx, in.Image)
	if err != nil {
		return domain.Post{}, err
	}

	now := time.Now().UTC()
	post := domain.Post{
		ID:        util.NewID(),
		CreatorID: in.CreatorID,
		Caption:   in.Caption,
		Location:  in.Location,
		Tags:      format.ParseTags(in.Tags),
		ImageURL:  staged.url,
		ImageID:   staged.file.ID,
		Likes:     []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SavePost(post); err != nil {
		staged.release()
		return domain.Post{}, fmt.Errorf("save post: %w", err)
	}
	return post, nil
}

// UpdatePost rewrites a post's caption, location and tags, optionally
// replacing its image. A replacement that fails at the document write
// deletes the freshly uploaded image; the previous image is never removed
// here, matching the delete workflow below.
func (a *App) UpdatePost(ctx context.Context, in UpdatePostInput) (domain.Post, error) {
	if in.PostID == "" {
		return domain.Post{}, fmt.Errorf("%w: post id required", ErrInvalidArgument)
	}
	existing, ok, err := a.store.GetPost(in.PostID)
	if err != nil {
		return domain.Post{}, fmt.Errorf("fetch post: %w", err)
	}
	if !ok {
		return domain.Post{}, fmt.Errorf("%w: post %s", ErrNotFound, in.PostID)
	}

	imageURL, imageID := existing.ImageURL, existing.ImageID
	var staged stagedImage
	if in.NewImage != nil {
		staged, err = a.stageImage(ctx, *in.NewImage)
		if err != nil {
			return domain.Post{}, err
		}
		imageURL, imageID = staged.url, staged.file.ID
	}

	post := existing
	post.Caption = in.Caption
	post.Location = in.Location
	post.Tags = format.ParseTags(in.Tags)
	post.ImageURL = imageURL
	post.ImageID = imageID
	post.UpdatedAt = time.Now().UTC()
	if err := a.store.SavePost(post); err != nil {
		if staged.release != nil {
			staged.release()
		}
		return domain.Post{}, fmt.Errorf("save post: %w", err)
	}
	return post, nil
}

// DeletePost removes the post document. Both identifiers are required up
// front, before anything is touched. The stored image is intentionally left
// in place.
func (a *App) DeletePost(ctx context.Context, postID, imageID string) error {
	if postID == "" || imageID == "" {
		return fmt.Errorf("%w: post id and image id required", ErrInvalidArgument)
	}
	if err := a.store.DeletePost(postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// PostByID fetches a single post.
func (a *App) PostByID(_ context.Context, postID string) (domain.Post, error) {
	if postID == "" {
		return domain.Post{}, fmt.Errorf("%w: post id required", ErrInvalidArgument)
	}
	post, ok, err := a.store.GetPost(postID)
	if err != nil {
		return domain.Post{}, fmt.Errorf("fetch post: %w", err)
	}
	if !ok {
		return domain.Post{}, fmt.Errorf("%w: post %s", ErrNotFound, postID)
	}
	return post, nil
}

// LikePost overwrites the post's like list with the one supplied and bumps
// the post in the recency feed.
func (a *App) LikePost(ctx context.Context, postID string, likes []string) (domain.Post, error) {
	if postID == "" {
		return domain.Post{}, fmt.Errorf("%w: post id required", ErrInvalidArgument)
	}
	if _, err := a.PostByID(ctx, postID); err != nil {
		return domain.Post{}, err
	}
	if likes == nil {
		likes = []string{}
	}
	if err := a.store.SetPostLikes(postID, likes); err != nil {
		return domain.Post{}, fmt.Errorf("set likes: %w", err)
	}
	return a.PostByID(ctx, postID)
}

// SavePost records that a user saved a post.
func (a *App) SavePost(_ context.Context, userID, postID string) (domain.SavedPost, error) {
	if userID == "" || postID == "" {
		return domain.SavedPost{}, fmt.Errorf("%w: user id and post id required", ErrInvalidArgument)
	}
	saved := domain.SavedPost{
		ID:        util.NewID(),
		UserID:    userID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	if err := a.store.SaveSavedPost(saved); err != nil {
		return domain.SavedPost{}, fmt.Errorf("save record: %w", err)
	}
	return saved, nil
}

// SavedPostByID fetches a single save record.
func (a *App) SavedPostByID(_ context.Context, savedID string) (domain.SavedPost, error) {
	if savedID == "" {
		return domain.SavedPost{}, fmt.Errorf("%w: saved record id required", ErrInvalidArgument)
	}
	saved, ok, err := a.store.GetSavedPost(savedID)
	if err != nil {
		return domain.SavedPost{}, fmt.Errorf("fetch record: %w", err)
	}
	if !ok {
		return domain.SavedPost{}, fmt.Errorf("%w: saved record %s", ErrNotFound, savedID)
	}
	return saved, nil
}

// DeleteSavedPost removes a save record by its own identifier.
func (a *App) DeleteSavedPost(_ context.Context, savedID string) error {
	if savedID == "" {
		return fmt.Errorf("%w: saved record id required", ErrInvalidArgument)
	}
	_, ok, err := a.store.GetSavedPost(savedID)
	if err != nil {
		return fmt.Errorf("fetch record: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: saved record %s", ErrNotFound, savedID)
	}
	if err := a.store.DeleteSavedPost(savedID); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// SavedPostsByUser lists a user's save records, newest first.
func (a *App) SavedPostsByUser(_ context.Context, userID string) ([]domain.SavedPost, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", ErrInvalidArgument)
	}
	return a.store.ListSavedPostsByUser(userID)
}

// RecentPosts returns the home feed, newest creations first.
func (a *App) RecentPosts(_ context.Context) ([]domain.Post, error) {
	return a.store.ListRecentPosts(feedPageSize)
}

// Posts returns a feed page ordered by last update. An empty cursor starts
// at the top; otherwise the page starts just after the named post.
func (a *App) Posts(_ context.Context, cursor string) ([]domain.Post, error) {
	posts, err := a.store.ListPostsAfter(cursor, feedPageSize)
	if err != nil {
		if errors.Is(err, store.ErrCursorNotFound) {
			return nil, fmt.Errorf("%w: cursor post %s", ErrNotFound, cursor)
		}
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// SearchPosts matches the term against captions, case-insensitively.
func (a *App) SearchPosts(_ context.Context, term string) ([]domain.Post, error) {
	return a.store.SearchPosts(term)
}
