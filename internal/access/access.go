// Package access decides which sessions may perform privileged operations.
package access

import (
	"context"
	"strings"
)

// Authorizer answers whether the holder of an email may moderate content.
type Authorizer interface {
	CanModerate(ctx context.Context, email string) bool
}

// Func adapts a plain function to Authorizer.
type Func func(ctx context.Context, email string) bool

func (f Func) CanModerate(ctx context.Context, email string) bool {
	return f(ctx, email)
}

// AllowList grants moderation to a fixed set of email addresses.
type AllowList struct {
	emails map[string]struct{}
}

// NewAllowList builds an allow-list; comparison ignores case and surrounding space.
func NewAllowList(emails []string) *AllowList {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = normalize(e)
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return &AllowList{emails: set}
}

func (a *AllowList) CanModerate(_ context.Context, email string) bool {
	email = normalize(email)
	if email == "" {
		return false
	}
	_, ok := a.emails[email]
	return ok
}

// Len is the number of distinct addresses.
func (a *AllowList) Len() int {
	return len(a.emails)
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
