package services

import (
	"testing"

	"github.com/anjiri1684/chat_backend/apperrors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_ThenStatusThenUnblock(t *testing.T) {
	e := newEnv(t)
	a, b := e.user(t, "alice"), e.user(t, "bob")

	list, err := e.blocks.Block(e.ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{b}, list)

	status, err := e.blocks.Status(e.ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, BlockStatus{IsBlocked: true, HasBlockedUs: false, Blocked: true}, status)

	reverse, err := e.blocks.Status(e.ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, BlockStatus{IsBlocked: false, HasBlockedUs: true, Blocked: true}, reverse)

	list, err = e.blocks.Unblock(e.ctx, a, b)
	require.NoError(t, err)
	assert.Empty(t, list)

	status, err = e.blocks.Status(e.ctx, a, b)
	require.NoError(t, err)
	assert.Equal(t, BlockStatus{}, status)
}

func TestBlock_Rejections(t *testing.T) {
	e := newEnv(t)
	a, b := e.user(t, "alice"), e.user(t, "bob")

	_, err := e.blocks.Block(e.ctx, a, a)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidArgument), "self block")

	_, err = e.blocks.Block(e.ctx, a, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound), "unknown target")

	_, err = e.blocks.Block(e.ctx, a, b)
	require.NoError(t, err)
	_, err = e.blocks.Block(e.ctx, a, b)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict), "already blocked")

	_, err = e.blocks.Unblock(e.ctx, b, a)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict), "not blocked")

	_, err = e.blocks.Status(e.ctx, a, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestBlock_ListBlockedResolvesProfiles(t *testing.T) {
	e := newEnv(t)
	a, b, c := e.user(t, "alice"), e.user(t, "bob"), e.user(t, "carol")

	_, err := e.blocks.Block(e.ctx, a, c)
	require.NoError(t, err)
	_, err = e.blocks.Block(e.ctx, a, b)
	require.NoError(t, err)

	list, err := e.blocks.ListBlocked(e.ctx, a)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "carol", list[0].FullName)
	assert.Equal(t, "bob", list[1].FullName)
}
