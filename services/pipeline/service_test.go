package pipeline

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
	db := testutil.NewTestDB(t, &Pipeline{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(ServiceParams{DB: db, Node: node})
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", CreateRequest{TriggerName: "tr_daily"})
	require.Error(t, err)

	_, err = svc.Create(ctx, "user-1", CreateRequest{Name: "  "})
	require.Error(t, err)
}

func TestCreateTrimsAndStoresDescription(t *testing.T) {
	svc := newTestService(t)
	desc := "  nightly retail load  "

	p, err := svc.Create(context.Background(), "user-1", CreateRequest{
		Name:        "  pl_retail_ingest  ",
		TriggerName: " tr_daily_0200 ",
		Description: &desc,
	})
	require.NoError(t, err)
	require.Equal(t, "pl_retail_ingest", p.Name)
	require.Equal(t, "tr_daily_0200", p.TriggerName)
	require.NotNil(t, p.Description)
	require.Equal(t, "nightly retail load", *p.Description)
}

func TestCreateDuplicateNameConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", CreateRequest{Name: "pl_sales", TriggerName: "tr_a"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "user-1", CreateRequest{Name: "pl_sales", TriggerName: "tr_b"})
	require.True(t, errutil.IsConflict(err))

	// same name is fine under a different owner
	_, err = svc.Create(ctx, "user-2", CreateRequest{Name: "pl_sales", TriggerName: "tr_a"})
	require.NoError(t, err)
}

func TestListOwnerScopedAndOrdered(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, p := range []CreateRequest{
		{Name: "pl_zeta", TriggerName: "tr_1"},
		{Name: "pl_alpha", TriggerName: "tr_2"},
	} {
		_, err := svc.Create(ctx, "user-1", p)
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "user-2", CreateRequest{Name: "pl_other", TriggerName: "tr_x"})
	require.NoError(t, err)

	pipelines, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, pipelines, 2)
	require.Equal(t, "pl_alpha", pipelines[0].Name)
	require.Equal(t, "pl_zeta", pipelines[1].Name)
}
