package service

import (
	"context"
	"encoding/hex"
	"strings"

	"folio/internal/models"
	"folio/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// AnalyticsService records page views without storing raw IPs or user agents.
type AnalyticsService struct {
	views repository.PageViewRepository
	key   []byte
}

type RecordViewInput struct {
	PostSlug  string
	UserID    *uuid.UUID
	IP        string
	UserAgent string
}

// NewAnalyticsService hashes visitor details with a key derived from secret.
func NewAnalyticsService(views repository.PageViewRepository, secret string) *AnalyticsService {
	key := blake2b.Sum256([]byte("folio page views:" + secret))
	return &AnalyticsService{views: views, key: key[:]}
}

// Hash returns the keyed BLAKE2b-256 digest of v in hex.
func (s *AnalyticsService) Hash(v string) string {
	h, err := blake2b.New256(s.key)
	if err != nil {
		// Only reachable with a key over 64 bytes.
		panic(err)
	}
	_, _ = h.Write([]byte(v))
	return hex.EncodeToString(h.Sum(nil))
}

func (s *AnalyticsService) RecordView(ctx context.Context, in RecordViewInput) error {
	view := &models.PageView{
		UserID:        in.UserID,
		IPHash:        s.Hash(strings.TrimSpace(in.IP)),
		UserAgentHash: s.Hash(in.UserAgent),
	}
	if slug := strings.TrimSpace(in.PostSlug); slug != "" {
		view.PostSlug = &slug
	}
	return s.views.Create(ctx, view)
}

func (s *AnalyticsService) Summary(ctx context.Context) (*models.Analytics, error) {
	return s.views.Analytics(ctx)
}
