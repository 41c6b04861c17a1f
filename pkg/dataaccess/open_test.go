package dataaccess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		s, err := Open(ctx, testLogger(t), OpenOptions{Path: t.TempDir()})
		require.NoError(t, err)
		require.IsType(t, &FileStore{}, s)
		require.NoError(t, s.Ping(ctx))
		require.NoError(t, s.Close(ctx))
	})

	t.Run("nothing configured", func(t *testing.T) {
		_, err := Open(ctx, testLogger(t), OpenOptions{})
		require.Error(t, err)
	})
}
