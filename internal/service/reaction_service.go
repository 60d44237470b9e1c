package service

import (
	"context"
	"log/slog"
	"strings"

	"folio/internal/models"
	"folio/internal/notifications"
	"folio/internal/observability"
	"folio/internal/repository"

	"github.com/google/uuid"
)

// ReactionService applies the like/dislike toggle policy.
type ReactionService struct {
	reactions repository.ReactionRepository
	items     ItemResolver
	events    notifications.Publisher
}

type SetReactionInput struct {
	PostSlug     string
	UserID       uuid.UUID
	ReactionType models.ReactionType
}

// NewReactionService wires the reaction use cases. items and events may be nil.
func NewReactionService(
	reactions repository.ReactionRepository,
	items ItemResolver,
	events notifications.Publisher,
) *ReactionService {
	return &ReactionService{reactions: reactions, items: items, events: events}
}

func (s *ReactionService) GetSummary(ctx context.Context, slug string, userID *uuid.UUID) (*models.ReactionSummary, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, models.NewValidationError("Post slug is required")
	}
	return s.reactions.Aggregate(ctx, slug, userID)
}

// SetReaction records in.ReactionType for the user. Repeating the user's
// current reaction removes it instead.
func (s *ReactionService) SetReaction(ctx context.Context, in SetReactionInput) (*models.ReactionSummary, error) {
	slug := strings.TrimSpace(in.PostSlug)
	if slug == "" {
		return nil, models.NewValidationError("Post slug is required")
	}
	if in.UserID == uuid.Nil {
		return nil, models.NewValidationError("User id is required")
	}
	if !in.ReactionType.Valid() {
		return nil, models.NewValidationError("Reaction type must be 'like' or 'dislike'")
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

	current, err := s.reactions.Get(ctx, slug, in.UserID)
	switch {
	case err == nil && current.ReactionType == in.ReactionType:
		if err := s.reactions.Delete(ctx, slug, in.UserID); err != nil {
			return nil, err
		}
		observability.ReactionsWritten.WithLabelValues("toggle_off").Inc()
	case err == nil || models.IsNotFound(err):
		if _, err := s.reactions.Upsert(ctx, slug, in.UserID, in.ReactionType); err != nil {
			return nil, err
		}
		observability.ReactionsWritten.WithLabelValues("set").Inc()
	default:
		return nil, err
	}

	return s.changed(ctx, slug, in.UserID)
}

// RemoveReaction deletes the user's reaction, if any.
func (s *ReactionService) RemoveReaction(ctx context.Context, slug string, userID uuid.UUID) (*models.ReactionSummary, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, models.NewValidationError("Post slug is required")
	}
	if userID == uuid.Nil {
		return nil, models.NewValidationError("User id is required")
	}
	if err := s.reactions.Delete(ctx, slug, userID); err != nil {
		return nil, err
	}
	observability.ReactionsWritten.WithLabelValues("delete").Inc()
	return s.changed(ctx, slug, userID)
}

func (s *ReactionService) changed(ctx context.Context, slug string, userID uuid.UUID) (*models.ReactionSummary, error) {
	summary, err := s.reactions.Aggregate(ctx, slug, &userID)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		// Other watchers see counts only.
		counts := models.ReactionSummary{Likes: summary.Likes, Dislikes: summary.Dislikes}
		err := s.events.PublishPostEvent(ctx, notifications.Event{
			Type:    notifications.EventReactionsChanged,
			Slug:    slug,
			Payload: counts,
		})
		if err != nil {
			observability.Logger.WarnContext(ctx, "failed to publish post event",
				slog.String("type", notifications.EventReactionsChanged),
				slog.String("slug", slug),
				slog.String("error", err.Error()),
			)
		}
	}
	return summary, nil
}
