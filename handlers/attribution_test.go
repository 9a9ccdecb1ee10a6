package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/api/models"
)

func TestResolveUserIDKnownEmail(t *testing.T) {
	t.Parallel()
	lookup := &stubUserLookup{users: map[string]*models.User{
		"dev@example.com": {ID: 42, Email: "dev@example.com"},
	}}

	id := ResolveUserID(context.Background(), lookup, "dev@example.com")
	require.NotNil(t, id)
	assert.Equal(t, 42, *id)
}

func TestResolveUserIDAnonymous(t *testing.T) {
	t.Parallel()
	lookup := &stubUserLookup{users: map[string]*models.User{}}

	assert.Nil(t, ResolveUserID(context.Background(), lookup, ""))
	assert.Nil(t, ResolveUserID(context.Background(), nil, "dev@example.com"))
	assert.Nil(t, ResolveUserID(context.Background(), lookup, "nobody@example.com"))
}

// A failing lookup degrades to anonymous; it must never surface an error
// that could block ingestion.
func TestResolveUserIDLookupFailure(t *testing.T) {
	t.Parallel()
	lookup := &stubUserLookup{err: errors.New("database down")}
	assert.Nil(t, ResolveUserID(context.Background(), lookup, "dev@example.com"))
}
