package handlers

import (
	"context"
	"log"

	"projecthub/api/models"
)

// UserLookup is the slice of the user store attribution needs.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// ResolveUserID maps an optional verified email to a stored user id.
// Attribution is strictly best-effort: no identity, no match, or a lookup
// failure all resolve to nil. It never blocks ingestion with an error.
func ResolveUserID(ctx context.Context, lookup UserLookup, email string) *int {
	if email == "" || lookup == nil {
		return nil
	}

	user, err := lookup.GetUserByEmail(ctx, email)
	if err != nil {
		log.Printf("Attribution lookup for %s failed, recording as anonymous: %v", email, err)
		return nil
	}

	id := user.ID
	return &id
}
