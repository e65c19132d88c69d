package auth

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retailops-dashboard/pkg/errutil"
	"retailops-dashboard/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t, &User{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(ServiceParams{DB: db, Node: node})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "dana", "correct horse battery")
	require.NoError(t, err)
	require.Equal(t, "dana", user.Username)
	require.NotEqual(t, "correct horse battery", user.Password, "password stored hashed")

	got, err := svc.Login(ctx, "dana", "correct horse battery")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "  ", "long enough password")
	require.Error(t, err)

	_, err = svc.Register(ctx, "dana", "short")
	require.Error(t, err)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dana", "long enough password")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "dana", "another password")
	require.True(t, errutil.IsConflict(err))
}

func TestLoginUnknownUser(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Login(context.Background(), "ghost", "whatever!")
	require.True(t, errutil.IsNotFound(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "dana", "correct horse battery")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "dana", "wrong password")
	require.Error(t, err)
	require.False(t, errutil.IsNotFound(err))
}

func TestLoginValidation(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Login(context.Background(), "", "")
	require.Error(t, err)
}
