package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestLocalStore_PutOpenDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	key, size, err := s.Put(ctx, strings.NewReader("planos de obra"), 1024)
	require.NoError(t, err)
	assert.Equal(t, int64(14), size)
	assert.Equal(t, key[:2], key[3:5])

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "planos de obra", string(body))

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)

	// 重复删除不报错
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStore_TooLarge(t *testing.T) {
	s := newTestStore(t)
	_, _, err := s.Put(context.Background(), strings.NewReader("0123456789"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLocalStore_InvalidKey(t *testing.T) {
	s := newTestStore(t)
	for _, key := range []string{"", "../etc/passwd", "/etc/passwd", "ab/../../x"} {
		_, err := s.Open(context.Background(), key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStore_CancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := s.Put(ctx, strings.NewReader("data"), 0)
	assert.ErrorIs(t, err, context.Canceled)
}
