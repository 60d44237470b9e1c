// Package validation holds request payloads and the rules they are checked
// against before reaching a service.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"folio/internal/models"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// MaxCommentLength is counted in characters after trimming.
const MaxCommentLength = 1000

var slugRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{0,199}$`)

// Slug accepts content identifiers: letters, digits, '-' and '_', not
// starting with a separator.
var Slug = ozzo.Match(slugRegex).Error("must be a valid slug")

// ValidateSlug checks a single slug outside of a struct.
func ValidateSlug(slug string) error {
	return AsAppError(ozzo.Validate(slug, ozzo.Required, Slug))
}

// CommentContent requires non-blank content of at most MaxCommentLength
// characters once surrounding whitespace is removed.
var CommentContent = ozzo.By(func(value any) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return ozzo.NewError("validation_comment_required", "content is required")
	}
	if utf8.RuneCountInString(s) > MaxCommentLength {
		return ozzo.NewError("validation_comment_too_long", "must be at most 1000 characters")
	}
	return nil
})

// NotNilUUID rejects the zero UUID, which ozzo.Required does not treat as
// empty.
var NotNilUUID = ozzo.By(func(value any) error {
	switch id := value.(type) {
	case uuid.UUID:
		if id == uuid.Nil {
			return ozzo.NewError("validation_required", "cannot be blank")
		}
	case *uuid.UUID:
		if id != nil && *id == uuid.Nil {
			return ozzo.NewError("validation_required", "cannot be blank")
		}
	}
	return nil
})

// ReactionType limits reactions to like and dislike.
var ReactionType = ozzo.In(models.ReactionLike, models.ReactionDislike).
	Error("must be 'like' or 'dislike'")

// AsAppError turns ozzo validation failures into a VALIDATION_ERROR.
// Internal rule errors stay internal.
func AsAppError(err error) error {
	if err == nil {
		return nil
	}
	var internal ozzo.InternalError
	if errors.As(err, &internal) {
		return models.NewInternalError(err)
	}
	return models.NewValidationError(err.Error())
}
