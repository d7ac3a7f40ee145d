package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	g := NewUUIDGenerator()
	a, b := g.NewID(), g.NewID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}

func TestNewGroupIDsShareSuffix(t *testing.T) {
	g := NewUUIDGenerator()
	grp, ship := g.NewGroupIDs()

	require.True(t, strings.HasPrefix(grp, "GRP-"))
	require.True(t, strings.HasPrefix(ship, "SHIP-"))
	assert.Equal(t, strings.TrimPrefix(grp, "GRP-"), strings.TrimPrefix(ship, "SHIP-"))
	assert.Len(t, strings.TrimPrefix(grp, "GRP-"), 12)

	other, _ := g.NewGroupIDs()
	assert.NotEqual(t, grp, other)
}
