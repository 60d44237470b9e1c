package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReactionType is either a like or a dislike.
type ReactionType string

// Supported reaction types.
const (
	ReactionLike    ReactionType = "like"
	ReactionDislike ReactionType = "dislike"
)

// Valid reports whether t is one of the supported reaction types.
func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionDislike
}

// Reaction records one user's reaction to a content item.
// The combination of PostSlug and UserID is unique.
type Reaction struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	PostSlug     string       `gorm:"not null;uniqueIndex:idx_reaction_slug_user" json:"post_slug"`
	UserID       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_slug_user" json:"user_id"`
	ReactionType ReactionType `gorm:"type:varchar(16);not null" json:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (r *Reaction) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReactionSummary is the aggregate returned to clients.
type ReactionSummary struct {
	Likes        int64         `json:"likes"`
	Dislikes     int64         `json:"dislikes"`
	UserReaction *ReactionType `json:"userReaction"`
}
