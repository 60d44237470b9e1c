package repository

import (
	"context"
	"log/slog"

	"folio/internal/cache"
	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository defines persistence operations for reactions.
type ReactionRepository interface {
	// Aggregate counts the reactions on slug. When userID is set the
	// summary also carries that user's current reaction.
	Aggregate(ctx context.Context, slug string, userID *uuid.UUID) (*models.ReactionSummary, error)
	Get(ctx context.Context, slug string, userID uuid.UUID) (*models.Reaction, error)
	Upsert(ctx context.Context, slug string, userID uuid.UUID, reactionType models.ReactionType) (*models.Reaction, error)
	Delete(ctx context.Context, slug string, userID uuid.UUID) error
}

type reactionRepository struct {
	db      *gorm.DB
	rdb     *redis.Client
	retrier *database.Retrier
	log     *observability.RepoLogger
}

// NewReactionRepository returns a new ReactionRepository implementation.
// Counts are cached in rdb when it is non-nil.
func NewReactionRepository(db *gorm.DB, rdb *redis.Client, retrier *database.Retrier) ReactionRepository {
	return &reactionRepository{
		db:      db,
		rdb:     rdb,
		retrier: retrier,
		log:     observability.NewRepoLogger("reactions"),
	}
}

type reactionCounts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

type reactionCountRow struct {
	ReactionType models.ReactionType
	Count        int64
}

func (r *reactionRepository) counts(ctx context.Context, slug string) (reactionCounts, error) {
	var counts reactionCounts
	err := cache.Aside(ctx, r.rdb, cache.ReactionsKey(slug), &counts, cache.ReactionsTTL, func() error {
		rows, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) ([]reactionCountRow, error) {
			var rows []reactionCountRow
			err := r.db.WithContext(ctx).Model(&models.Reaction{}).
				Select("reaction_type, COUNT(*) AS count").
				Where("post_slug = ?", slug).
				Group("reaction_type").
				Scan(&rows).Error
			return rows, err
		})
		if err != nil {
			return err
		}
		for _, row := range rows {
			switch row.ReactionType {
			case models.ReactionLike:
				counts.Likes = row.Count
			case models.ReactionDislike:
				counts.Dislikes = row.Count
			}
		}
		return nil
	})
	return counts, err
}

func (r *reactionRepository) Aggregate(ctx context.Context, slug string, userID *uuid.UUID) (*models.ReactionSummary, error) {
	counts, err := r.counts(ctx, slug)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	summary := &models.ReactionSummary{Likes: counts.Likes, Dislikes: counts.Dislikes}

	if userID != nil {
		current, err := r.Get(ctx, slug, *userID)
		switch {
		case err == nil:
			t := current.ReactionType
			summary.UserReaction = &t
		case models.IsNotFound(err):
		default:
			return nil, err
		}
	}
	return summary, nil
}

func (r *reactionRepository) Get(ctx context.Context, slug string, userID uuid.UUID) (*models.Reaction, error) {
	reaction, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) (*models.Reaction, error) {
		var rx models.Reaction
		err := r.db.WithContext(ctx).
			Where("post_slug = ? AND user_id = ?", slug, userID).
			First(&rx).Error
		if err != nil {
			return nil, err
		}
		return &rx, nil
	})
	if err != nil {
		return nil, mapError(err, "Reaction", slug)
	}
	return reaction, nil
}

func (r *reactionRepository) Upsert(ctx context.Context, slug string, userID uuid.UUID, reactionType models.ReactionType) (*models.Reaction, error) {
	row := &models.Reaction{PostSlug: slug, UserID: userID, ReactionType: reactionType}
	err := r.retrier.Do(ctx, database.ClassIdempotentWrite, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_slug"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"reaction_type", "updated_at"}),
		}).Create(row).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "upsert")
		return nil, models.NewInternalError(err)
	}
	cache.InvalidateReactions(ctx, r.rdb, slug)
	r.log.LogWrite(ctx, "upsert",
		slog.String("post_slug", slug),
		slog.String("reaction_type", string(reactionType)),
	)
	return r.Get(ctx, slug, userID)
}

func (r *reactionRepository) Delete(ctx context.Context, slug string, userID uuid.UUID) error {
	err := r.retrier.Do(ctx, database.ClassIdempotentWrite, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Where("post_slug = ? AND user_id = ?", slug, userID).
			Delete(&models.Reaction{}).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return models.NewInternalError(err)
	}
	cache.InvalidateReactions(ctx, r.rdb, slug)
	r.log.LogWrite(ctx, "delete", slog.String("post_slug", slug))
	return nil
}
