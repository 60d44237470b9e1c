package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"folio/internal/access"
	"folio/internal/models"
	"folio/internal/notifications"
	"folio/internal/observability"
	"folio/internal/repository"
	"folio/internal/validation"

	"github.com/google/uuid"
)

// ItemResolver reports whether a slug names something readers can
// comment on or react to.
type ItemResolver interface {
	Exists(ctx context.Context, slug string) (bool, error)
}

// AnyItem resolves a slug against each resolver in turn.
type AnyItem []ItemResolver

func (a AnyItem) Exists(ctx context.Context, slug string) (bool, error) {
	for _, r := range a {
		ok, err := r.Exists(ctx, slug)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

type CommentService struct {
	comments   repository.CommentRepository
	items      ItemResolver
	authorizer access.Authorizer
	events     notifications.Publisher
}

type CreateCommentInput struct {
	UserID   uuid.UUID
	PostSlug string
	Content  string
	ParentID *uuid.UUID
}

// SetVisibilityInput hides or restores a comment on behalf of ActorEmail.
type SetVisibilityInput struct {
	ActorEmail string
	CommentID  uuid.UUID
	Hidden     bool
}

// NewCommentService wires the comment use cases. items and events may be
// nil; a nil authorizer denies every moderation request.
func NewCommentService(
	comments repository.CommentRepository,
	items ItemResolver,
	authorizer access.Authorizer,
	events notifications.Publisher,
) *CommentService {
	return &CommentService{
		comments:   comments,
		items:      items,
		authorizer: authorizer,
		events:     events,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.UserID == uuid.Nil {
		return nil, models.NewAuthRequiredError("Sign in to comment")
	}
	slug := strings.TrimSpace(in.PostSlug)
	if slug == "" {
		return nil, models.NewValidationError("Post slug is required")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > validation.MaxCommentLength {
		return nil, models.NewValidationError("Comment too long (max 1000 characters)")
	}

	if s.items != nil {
		ok, err := s.items.Exists(ctx, slug)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewNotFoundError("Post", slug)
		}
	}

	if in.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *in.ParentID)
		if err != nil {
			if models.IsNotFound(err) {
				return nil, models.NewValidationError("Parent comment not found")
			}
			return nil, err
		}
		if parent.PostSlug != slug {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		PostSlug: slug,
		ParentID: in.ParentID,
		UserID:   in.UserID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.CommentsCreated.Inc()

	created, err := s.comments.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notifications.Event{Type: notifications.EventCommentCreated, Slug: slug, Payload: created})
	return created, nil
}

// ListComments returns the visible comments of slug, oldest first.
func (s *CommentService) ListComments(ctx context.Context, slug string) ([]*models.Comment, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, models.NewValidationError("Post slug is required")
	}
	return s.comments.ListVisible(ctx, slug)
}

// ListThreaded is ListComments with replies nested under their parents.
func (s *CommentService) ListThreaded(ctx context.Context, slug string) ([]*models.Comment, error) {
	flat, err := s.ListComments(ctx, slug)
	if err != nil {
		return nil, err
	}
	return Thread(flat), nil
}

// Thread nests replies under their parents, keeping creation order at
// every level. Replies whose parent is not in comments (hidden, for
// instance) stay at the top level.
func Thread(comments []*models.Comment) []*models.Comment {
	byID := make(map[uuid.UUID]*models.Comment, len(comments))
	for _, c := range comments {
		c.Replies = nil
		byID[c.ID] = c
	}

	roots := []*models.Comment{}
	for _, c := range comments {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent != c {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		roots = append(roots, c)
	}
	return roots
}

// SetVisibility hides or restores a comment. Only moderators may call it.
func (s *CommentService) SetVisibility(ctx context.Context, in SetVisibilityInput) error {
	if s.authorizer == nil || !s.authorizer.CanModerate(ctx, in.ActorEmail) {
		return models.NewForbiddenError("Admin access required")
	}
	comment, err := s.comments.GetByID(ctx, in.CommentID)
	if err != nil {
		return err
	}
	if err := s.comments.SetHidden(ctx, in.CommentID, in.Hidden); err != nil {
		return err
	}
	if in.Hidden {
		s.publish(ctx, notifications.Event{
			Type:    notifications.EventCommentHidden,
			Slug:    comment.PostSlug,
			Payload: map[string]string{"commentId": in.CommentID.String()},
		})
	}
	return nil
}

func (s *CommentService) publish(ctx context.Context, ev notifications.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishPostEvent(ctx, ev); err != nil {
		observability.Logger.WarnContext(ctx, "failed to publish post event",
			slog.String("type", ev.Type),
			slog.String("slug", ev.Slug),
			slog.String("error", err.Error()),
		)
	}
}
