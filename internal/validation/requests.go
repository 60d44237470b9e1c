package validation

import (
	"folio/internal/models"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
)

// CommentRequest is the body of POST /api/comments.
type CommentRequest struct {
	PostSlug string     `json:"postSlug"`
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parentId"`
}

func (r CommentRequest) Validate() error {
	return AsAppError(ozzo.ValidateStruct(&r,
		ozzo.Field(&r.PostSlug, ozzo.Required, Slug),
		ozzo.Field(&r.Content, CommentContent),
		ozzo.Field(&r.ParentID, NotNilUUID),
	))
}

// VisibilityRequest is the body of PUT /api/comments.
type VisibilityRequest struct {
	CommentID uuid.UUID `json:"commentId"`
	IsHidden  *bool     `json:"isHidden"`
}

func (r VisibilityRequest) Validate() error {
	return AsAppError(ozzo.ValidateStruct(&r,
		ozzo.Field(&r.CommentID, NotNilUUID),
		ozzo.Field(&r.IsHidden, ozzo.NotNil),
	))
}

// ReactionRequest is the body of POST /api/reactions. UserID may be left
// out when the caller has a session.
type ReactionRequest struct {
	PostSlug     string              `json:"postSlug"`
	UserID       *uuid.UUID          `json:"userId"`
	ReactionType models.ReactionType `json:"reactionType"`
}

func (r ReactionRequest) Validate() error {
	return AsAppError(ozzo.ValidateStruct(&r,
		ozzo.Field(&r.PostSlug, ozzo.Required, Slug),
		ozzo.Field(&r.UserID, NotNilUUID),
		ozzo.Field(&r.ReactionType, ozzo.Required, ReactionType),
	))
}

// BlogPostRequest is the body of POST /api/blog.
type BlogPostRequest struct {
	Title         string   `json:"title"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	Tags          []string `json:"tags"`
	Published     bool     `json:"published"`
	FeaturedImage string   `json:"featured_image"`
}

func (r BlogPostRequest) Validate() error {
	return AsAppError(ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Title, ozzo.Required, ozzo.Length(1, 200)),
		ozzo.Field(&r.Content, ozzo.Required),
		ozzo.Field(&r.Excerpt, ozzo.Length(0, 500)),
		ozzo.Field(&r.Tags, ozzo.Each(ozzo.Required, ozzo.Length(1, 50))),
		ozzo.Field(&r.FeaturedImage, is.URL),
	))
}

// AuthCallbackRequest carries the profile the OAuth front end received
// from the provider.
type AuthCallbackRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Provider   string `json:"provider"`
	ProviderID string `json:"providerAccountId"`
}

func (r AuthCallbackRequest) Validate() error {
	return AsAppError(ozzo.ValidateStruct(&r,
		ozzo.Field(&r.Email, ozzo.Required, is.EmailFormat),
		ozzo.Field(&r.Name, ozzo.Length(0, 200)),
		ozzo.Field(&r.Image, is.URL),
		ozzo.Field(&r.Provider, ozzo.Length(0, 50)),
	))
}

// PageViewRequest is the body of POST /api/views.
type PageViewRequest struct {
	PostSlug string `json:"postSlug"`
}

func (r PageViewRequest) Validate() error {
	return AsAppError(ozzo.ValidateStruct(&r,
		ozzo.Field(&r.PostSlug, Slug),
	))
}
