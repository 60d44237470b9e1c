package repository

import (
	"context"
	"log/slog"
	"strings"

	"folio/internal/cache"
	"folio/internal/database"
	"folio/internal/models"
	"folio/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpsertByEmail inserts the user or updates the profile fields of the
	// existing row with the same email, returning the stored row.
	UpsertByEmail(ctx context.Context, user *models.User) (*models.User, error)
}

type userRepository struct {
	db      *gorm.DB
	rdb     *redis.Client
	retrier *database.Retrier
	log     *observability.RepoLogger
}

// NewUserRepository returns a new UserRepository implementation. rdb and
// retrier may be nil.
func NewUserRepository(db *gorm.DB, rdb *redis.Client, retrier *database.Retrier) UserRepository {
	return &userRepository{
		db:      db,
		rdb:     rdb,
		retrier: retrier,
		log:     observability.NewRepoLogger("users"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) (*models.User, error) {
		var u models.User
		if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &u, nil
	})
	if err != nil {
		return nil, mapError(err, "User", id)
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, models.NewValidationError("email is required")
	}

	var user models.User
	err := cache.Aside(ctx, r.rdb, cache.UserEmailKey(email), &user, cache.UserTTL, func() error {
		return r.retrier.Do(ctx, database.ClassRead, func(ctx context.Context) error {
			return r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
		})
	})
	if err != nil {
		return nil, mapError(err, "User", email)
	}
	return &user, nil
}

func (r *userRepository) UpsertByEmail(ctx context.Context, user *models.User) (*models.User, error) {
	email := normalizeEmail(user.Email)
	if email == "" {
		return nil, models.NewValidationError("email is required")
	}

	row := *user
	row.Email = email
	err := r.retrier.Do(ctx, database.ClassIdempotentWrite, func(ctx context.Context) error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "avatar_url", "provider", "provider_id", "updated_at"}),
		}).Create(&row).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "upsert")
		return nil, mapError(err, "User", email)
	}
	cache.InvalidateUser(ctx, r.rdb, email)

	// The conflicting row keeps its original id, so read it back.
	stored, err := database.Query(ctx, r.retrier, database.ClassRead, func(ctx context.Context) (*models.User, error) {
		var u models.User
		if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
			return nil, err
		}
		return &u, nil
	})
	if err != nil {
		return nil, mapError(err, "User", email)
	}
	r.log.LogWrite(ctx, "upsert", slog.String("user_id", stored.ID.String()))
	return stored, nil
}
