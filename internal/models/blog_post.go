package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost is a database-backed post, managed through the API rather than
// the content directory.
type BlogPost struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Excerpt       string    `gorm:"type:text" json:"excerpt"`
	AuthorID      uuid.UUID `gorm:"type:uuid" json:"author_id"`
	Published     bool      `gorm:"not null;default:false;index" json:"published"`
	Tags          []string  `gorm:"serializer:json" json:"tags"`
	FeaturedImage string    `json:"featured_image"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (p *BlogPost) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
