package auth_test

import (
	"testing"

	"github.com/Keksclan/goScoreRestorer/auth"
	"github.com/Keksclan/goScoreRestorer/contextx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", auth.BearerToken(metadata.Pairs("authorization", "Bearer abc")))
	assert.Equal(t, "abc", auth.BearerToken(metadata.Pairs("authorization", "bearer  abc ")))
	assert.Empty(t, auth.BearerToken(metadata.Pairs("authorization", "Basic abc")))
	assert.Empty(t, auth.BearerToken(metadata.MD{}))
}

func TestTokens(t *testing.T) {
	fn := auth.Tokens(map[string]string{"s3cret": "eu-1", "": "ignored"})

	ctx, err := fn(t.Context(), "/m", metadata.Pairs("authorization", "Bearer s3cret"))
	require.NoError(t, err)
	actor, ok := contextx.ActorFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "eu-1", actor.HostID)

	_, err = fn(t.Context(), "/m", metadata.Pairs("authorization", "Bearer nope"))
	assert.ErrorIs(t, err, auth.ErrUnknownToken)

	_, err = fn(t.Context(), "/m", metadata.MD{})
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	_, err = fn(t.Context(), "/m", metadata.Pairs("authorization", "Bearer "))
	assert.ErrorIs(t, err, auth.ErrMissingToken)
}
