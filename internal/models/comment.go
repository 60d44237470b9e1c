package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a reader comment on a content item, optionally replying to
// another comment on the same item. Comments are hidden, never deleted.
type Comment struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostSlug  string     `gorm:"not null;index:idx_comments_slug_created" json:"post_slug"`
	ParentID  *uuid.UUID `gorm:"type:uuid;index" json:"parent_id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	IsHidden  bool       `gorm:"not null;default:false" json:"is_hidden"`
	CreatedAt time.Time  `gorm:"index:idx_comments_slug_created" json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Replies is populated only by the threaded view.
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// MarshalJSON exposes only the author's public fields.
func (c Comment) MarshalJSON() ([]byte, error) {
	type alias Comment
	return json.Marshal(struct {
		alias
		User PublicUser `json:"user"`
	}{alias: alias(c), User: c.User.Public()})
}
