package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type AccountModel struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Name         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

type UserModel struct {
	ID        string    `gorm:"primaryKey"`
	AccountID string    `gorm:"not null;index"`
	Email     string    `gorm:"not null"`
	Name      string    `gorm:"not null"`
	Username  string    `gorm:"index"`
	ImageURL  string
	CreatedAt time.Time `gorm:"not null;index"`
}

type PostModel struct {
	ID        string `gorm:"primaryKey"`
	CreatorID string `gorm:"not null;index"`
	Caption   string `gorm:"type:text"`
	ImageURL  string
	ImageID   string
	Location  string
	Tags      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Likes     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt time.Time                   `gorm:"not null;index"`
	UpdatedAt time.Time                   `gorm:"not null;index"`
}

type SavedPostModel struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"not null;index"`
	PostID    string    `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null"`
}
