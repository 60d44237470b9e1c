package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowList(t *testing.T) {
	a := NewAllowList([]string{"Admin@Example.com", " ", "ops@example.com", "ops@example.com"})
	ctx := context.Background()

	assert.Equal(t, 2, a.Len())
	assert.True(t, a.CanModerate(ctx, "admin@example.com"))
	assert.True(t, a.CanModerate(ctx, "  OPS@example.com"))
	assert.False(t, a.CanModerate(ctx, "reader@example.com"))
	assert.False(t, a.CanModerate(ctx, ""))
}

func TestEmptyAllowListDeniesEveryone(t *testing.T) {
	assert.False(t, NewAllowList(nil).CanModerate(context.Background(), "admin@example.com"))
}

func TestFunc(t *testing.T) {
	var called string
	var a Authorizer = Func(func(_ context.Context, email string) bool {
		called = email
		return true
	})
	assert.True(t, a.CanModerate(context.Background(), "x@example.com"))
	assert.Equal(t, "x@example.com", called)
}
