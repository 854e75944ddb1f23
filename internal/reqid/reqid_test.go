package reqid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)

	_, ok = FromContext(context.Background())
	require.False(t, ok)
}

func TestEnsureKeepsExistingID(t *testing.T) {
	ctx, id := NewContext(context.Background())
	same, got := Ensure(ctx)
	require.Equal(t, id, got)
	require.Equal(t, ctx, same)

	fresh, freshID := Ensure(context.Background())
	got, ok := FromContext(fresh)
	require.True(t, ok)
	require.Equal(t, freshID, got)
}
