package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PageView is a single anonymised visit. IP and user agent are stored only
// as keyed hashes.
type PageView struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PostSlug      *string    `gorm:"index" json:"post_slug"`
	UserID        *uuid.UUID `gorm:"type:uuid" json:"user_id"`
	IPHash        string     `gorm:"index;not null" json:"ip_hash"`
	UserAgentHash string     `gorm:"not null" json:"user_agent_hash"`
	CreatedAt     time.Time  `json:"created_at"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (v *PageView) BeforeCreate(_ *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// PostViews is a per-slug view count.
type PostViews struct {
	Slug  string `json:"slug"`
	Views int64  `json:"views"`
}

// Analytics summarises page views.
type Analytics struct {
	TotalViews  int64       `json:"totalViews"`
	UniqueViews int64       `json:"uniqueViews"`
	TopPosts    []PostViews `json:"topPosts"`
}
