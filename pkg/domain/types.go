package domain

import "time"

// Account is the identity record behind a user. The password hash never
// leaves the service.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserProfile is the public profile document created once per Account at
// signup and mutable afterwards.
type UserProfile struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post is a feed entry. Likes is the ordered list of user IDs that have
// liked the post and is the sole source of truth for like membership;
// no separate counter is kept.
type Post struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creatorId"`
	Caption   string    `json:"caption"`
	ImageURL  string    `json:"imageUrl"`
	ImageID   string    `json:"imageId"`
	Location  string    `json:"location"`
	Tags      []string  `json:"tags"`
	Likes     []string  `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SavedPost is a join record; its existence means the user saved the post.
type SavedPost struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PostID    string    `json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

// UploadedFile describes a binary object held in the object store.
type UploadedFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes"`
}
