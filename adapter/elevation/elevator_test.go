package elevation

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-svaroles/pkg/authctx"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestElevator_ElevateAndRelease(t *testing.T) {
	elevator := New(Config{})
	actor := types.ActorRef{OfficeID: 1, UserID: 2}

	scope, err := elevator.Elevate(context.Background(), actor)
	require.NoError(t, err)
	require.Equal(t, int64(1), elevator.Active())
	require.True(t, scope.Identity().Elevated)
	require.True(t, authctx.IsElevated(scope.Context()))

	scope.Release()
	scope.Release()
	require.Equal(t, int64(0), elevator.Active())
	require.ErrorIs(t, scope.Context().Err(), context.Canceled)
}

func TestElevator_Rejections(t *testing.T) {
	_, err := New(Config{}).Elevate(context.Background(), types.ActorRef{})
	require.ErrorIs(t, err, types.ErrActorRequired)

	denied := errors.New("no delegation")
	elevator := New(Config{Authorize: func(context.Context, types.ActorRef) error { return denied }})
	_, err = elevator.Elevate(context.Background(), types.ActorRef{OfficeID: 1, UserID: 2})
	require.ErrorIs(t, err, denied)
	require.Zero(t, elevator.Active())
}
