package middleware_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/abacus/pkg/adapters/memory"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/persistence/middleware"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/ports/tests"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func seal(t *testing.T, next ports.StateStore, active []byte, fallback ...[]byte) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: active, FallbackKeys: fallback})
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	tests.StateStoreContractTest(t, seal(t, memory.NewStore(), generateKey(t)))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := seal(t, underlying, generateKey(t))
	ctx := context.Background()

	original := domain.NewState()
	original.SessionID = "vault"
	original.Buffer = "M+1"
	original.Vars.Set(domain.VarM, 1234.5)
	require.NoError(t, secure.Save(ctx, "vault", original))

	// 1. The underlying store only sees the envelope
	stored, err := underlying.Load(ctx, "vault")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Sealed)
	assert.Empty(t, stored.Buffer)
	assert.Zero(t, stored.Vars.M)
	assert.False(t, bytes.Contains(stored.Sealed, []byte("1234.5")))

	// 2. The middleware returns the real state
	loaded, err := secure.Load(ctx, "vault")
	require.NoError(t, err)
	assert.Equal(t, "M+1", loaded.Buffer)
	assert.Equal(t, 1234.5, loaded.Vars.M)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	withOld := seal(t, underlying, oldKey)
	state := domain.NewState()
	state.Buffer = "1"
	require.NoError(t, withOld.Save(ctx, "rot", state))

	// 1. New active key, old key as fallback
	withNew := seal(t, underlying, newKey, oldKey)
	loaded, err := withNew.Load(ctx, "rot")
	require.NoError(t, err)
	assert.Equal(t, "1", loaded.Buffer)

	// 2. Saving again re-encrypts with the new key
	loaded.Buffer = "2"
	require.NoError(t, withNew.Save(ctx, "rot", loaded))
	_, err = withOld.Load(ctx, "rot")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PlainStateRejected(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), "plain", domain.NewState()))

	_, err := seal(t, underlying, generateKey(t)).Load(context.Background(), "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("short")},
	})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.StateStore) ports.StateStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order)
}
