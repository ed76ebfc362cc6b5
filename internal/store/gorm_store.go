package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"snapfeed/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&AccountModel{}, &UserModel{}, &PostModel{}, &SavedPostModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// SaveAccount registers or updates an account.
func (s *GormStore) SaveAccount(a domain.Account) error {
	model := accountToModel(a)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "password_hash", "name"}),
	}).Create(&model).Error
}

// HasAccountEmail checks if email exists.
func (s *GormStore) HasAccountEmail(email string) (bool, error) {
	var count int64
	if err := s.db.Model(&AccountModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetAccountByEmail looks up an account by email.
func (s *GormStore) GetAccountByEmail(email string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// GetAccountByID returns an account by ID.
func (s *GormStore) GetAccountByID(id string) (domain.Account, bool, error) {
	var model AccountModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Account{}, false, nil
		}
		return domain.Account{}, false, err
	}
	return accountFromModel(model), true, nil
}

// SaveUser stores or updates a user profile document.
func (s *GormStore) SaveUser(u domain.UserProfile) error {
	model := userToModel(u)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "name", "username", "image_url"}),
	}).Create(&model).Error
}

// GetUserByID returns a profile by its document ID.
func (s *GormStore) GetUserByID(id string) (domain.UserProfile, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserProfile{}, false, nil
		}
		return domain.UserProfile{}, false, err
	}
	return userFromModel(model), true, nil
}

// GetUserByAccountID returns the first profile bound to the account.
func (s *GormStore) GetUserByAccountID(accountID string) (domain.UserProfile, bool, error) {
	var model UserModel
	err := s.db.Where("account_id = ?", accountID).Order("created_at ASC").First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.UserProfile{}, false, nil
		}
		return domain.UserProfile{}, false, err
	}
	return userFromModel(model), true, nil
}

// ListUsers returns all profiles, newest first.
func (s *GormStore) ListUsers() ([]domain.UserProfile, error) {
	var models []UserModel
	if err := s.db.Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.UserProfile, 0, len(models))
	for _, m := range models {
		res = append(res, userFromModel(m))
	}
	return res, nil
}

// SavePost stores or updates a post document.
func (s *GormStore) SavePost(p domain.Post) error {
	model := postToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"creator_id", "caption", "image_url", "image_id", "location", "tags", "likes", "updated_at"}),
	}).Create(&model).Error
}

// GetPost retrieves a post.
func (s *GormStore) GetPost(id string) (domain.Post, bool, error) {
	var model PostModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Post{}, false, nil
		}
		return domain.Post{}, false, err
	}
	return postFromModel(model), true, nil
}

// DeletePost removes a post document.
func (s *GormStore) DeletePost(id string) error {
	return s.db.Delete(&PostModel{}, "id = ?", id).Error
}

// SetPostLikes overwrites the post's like list. The document counts as
// updated, so the post moves to the front of the update-time feed.
func (s *GormStore) SetPostLikes(id string, likes []string) error {
	return s.db.Model(&PostModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"likes":      datatypes.NewJSONSlice(likes),
			"updated_at": time.Now().UTC(),
		}).Error
}

// ListRecentPosts returns the newest posts by creation time.
func (s *GormStore) ListRecentPosts(limit int) ([]domain.Post, error) {
	return s.listPosts(s.db.Order("created_at DESC, id DESC").Limit(limit))
}

// ListPostsAfter returns up to limit posts in descending update-time order,
// starting after the post named by cursor. An empty cursor starts from the
// most recently updated post.
func (s *GormStore) ListPostsAfter(cursor string, limit int) ([]domain.Post, error) {
	tx := s.db.Order("updated_at DESC, id DESC").Limit(limit)
	if cursor != "" {
		var pivot PostModel
		if err := s.db.First(&pivot, "id = ?", cursor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCursorNotFound
			}
			return nil, err
		}
		tx = tx.Where("updated_at < ? OR (updated_at = ? AND id < ?)", pivot.UpdatedAt, pivot.UpdatedAt, pivot.ID)
	}
	return s.listPosts(tx)
}

// SearchPosts matches the term against post captions, newest update first.
func (s *GormStore) SearchPosts(term string) ([]domain.Post, error) {
	return s.listPosts(s.db.
		Where("caption ILIKE ?", "%"+term+"%").
		Order("updated_at DESC, id DESC"))
}

func (s *GormStore) listPosts(tx *gorm.DB) ([]domain.Post, error) {
	var models []PostModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Post, 0, len(models))
	for _, m := range models {
		res = append(res, postFromModel(m))
	}
	return res, nil
}

// SaveSavedPost creates a saved-post join record.
func (s *GormStore) SaveSavedPost(sp domain.SavedPost) error {
	model := savedPostToModel(sp)
	return s.db.Create(&model).Error
}

// GetSavedPost retrieves a join record by ID.
func (s *GormStore) GetSavedPost(id string) (domain.SavedPost, bool, error) {
	var model SavedPostModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.SavedPost{}, false, nil
		}
		return domain.SavedPost{}, false, err
	}
	return savedPostFromModel(model), true, nil
}

// DeleteSavedPost removes a join record by ID.
func (s *GormStore) DeleteSavedPost(id string) error {
	return s.db.Delete(&SavedPostModel{}, "id = ?", id).Error
}

// ListSavedPostsByUser returns a user's saved-post records, newest first.
func (s *GormStore) ListSavedPostsByUser(userID string) ([]domain.SavedPost, error) {
	var models []SavedPostModel
	err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.SavedPost, 0, len(models))
	for _, m := range models {
		res = append(res, savedPostFromModel(m))
	}
	return res, nil
}

func accountToModel(a domain.Account) AccountModel {
	return AccountModel{
		ID:           a.ID,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Name:         a.Name,
		CreatedAt:    a.CreatedAt,
	}
}

func accountFromModel(m AccountModel) domain.Account {
	return domain.Account{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		CreatedAt:    m.CreatedAt,
	}
}

func userToModel(u domain.UserProfile) UserModel {
	return UserModel{
		ID:        u.ID,
		AccountID: u.AccountID,
		Email:     u.Email,
		Name:      u.Name,
		Username:  u.Username,
		ImageURL:  u.ImageURL,
		CreatedAt: u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.UserProfile {
	return domain.UserProfile{
		ID:        m.ID,
		AccountID: m.AccountID,
		Email:     m.Email,
		Name:      m.Name,
		Username:  m.Username,
		ImageURL:  m.ImageURL,
		CreatedAt: m.CreatedAt,
	}
}

func postToModel(p domain.Post) PostModel {
	return PostModel{
		ID:        p.ID,
		CreatorID: p.CreatorID,
		Caption:   p.Caption,
		ImageURL:  p.ImageURL,
		ImageID:   p.ImageID,
		Location:  p.Location,
		Tags:      datatypes.NewJSONSlice(p.Tags),
		Likes:     datatypes.NewJSONSlice(p.Likes),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func postFromModel(m PostModel) domain.Post {
	return domain.Post{
		ID:        m.ID,
		CreatorID: m.CreatorID,
		Caption:   m.Caption,
		ImageURL:  m.ImageURL,
		ImageID:   m.ImageID,
		Location:  m.Location,
		Tags:      []string(m.Tags),
		Likes:     []string(m.Likes),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func savedPostToModel(sp domain.SavedPost) SavedPostModel {
	return SavedPostModel{
		ID:        sp.ID,
		UserID:    sp.UserID,
		PostID:    sp.PostID,
		CreatedAt: sp.CreatedAt,
	}
}

func savedPostFromModel(m SavedPostModel) domain.SavedPost {
	return domain.SavedPost{
		ID:        m.ID,
		UserID:    m.UserID,
		PostID:    m.PostID,
		CreatedAt: m.CreatedAt,
	}
}
