package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project is a portfolio entry.
type Project struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string    `gorm:"not null" json:"title"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	Content       string    `gorm:"type:text" json:"content"`
	DemoURL       string    `json:"demo_url"`
	GithubURL     string    `json:"github_url"`
	TechStack     []string  `gorm:"serializer:json" json:"tech_stack"`
	FeaturedImage string    `json:"featured_image"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (p *Project) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
