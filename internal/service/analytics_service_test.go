package service

import (
	"context"
	"testing"

	"folio/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPageViews struct {
	views []*models.PageView
}

func (m *memPageViews) Create(_ context.Context, view *models.PageView) error {
	m.views = append(m.views, view)
	return nil
}

func (m *memPageViews) Analytics(context.Context) (*models.Analytics, error) {
	return &models.Analytics{TotalViews: int64(len(m.views)), TopPosts: []models.PostViews{}}, nil
}

func TestAnalyticsService_Hash(t *testing.T) {
	t.Parallel()

	a := NewAnalyticsService(nil, "secret-a")
	b := NewAnalyticsService(nil, "secret-b")

	assert.Equal(t, a.Hash("203.0.113.7"), a.Hash("203.0.113.7"))
	assert.NotEqual(t, a.Hash("203.0.113.7"), a.Hash("203.0.113.8"))
	assert.NotEqual(t, a.Hash("203.0.113.7"), b.Hash("203.0.113.7"), "digest depends on the secret")
	assert.Len(t, a.Hash(""), 64)
}

func TestAnalyticsService_RecordView(t *testing.T) {
	repo := &memPageViews{}
	svc := NewAnalyticsService(repo, "secret")
	ctx := context.Background()

	require.NoError(t, svc.RecordView(ctx, RecordViewInput{PostSlug: " welcome-post ", IP: "203.0.113.7", UserAgent: "curl/8"}))
	require.NoError(t, svc.RecordView(ctx, RecordViewInput{PostSlug: "  ", IP: "203.0.113.7", UserAgent: "curl/8"}))

	require.Len(t, repo.views, 2)
	first := repo.views[0]
	require.NotNil(t, first.PostSlug)
	assert.Equal(t, "welcome-post", *first.PostSlug)
	assert.NotContains(t, first.IPHash, "203.0.113.7")
	assert.Equal(t, svc.Hash("203.0.113.7"), first.IPHash)
	assert.Equal(t, svc.Hash("curl/8"), first.UserAgentHash)
	assert.Nil(t, repo.views[1].PostSlug, "blank slug records a site-wide view")

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.TotalViews)
}
