package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retailops-dashboard/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	db := testutil.NewTestDB(t, &PipelineMonitoring{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(ServiceParams{DB: db, Node: node})
}

func str(s string) *string { return &s }

func failedCreate(trigger string) CreateRequest {
	return CreateRequest{
		TriggerType:  TriggerFailed,
		FailureShift: str("B"),
		TriggerName:  trigger,
		RunID:        "run-001",
		Status:       "FAILED",
		MonitoredBy:  "operator-a",
	}
}

func TestCreateDefaultsTriggerTypeToFailed(t *testing.T) {
	svc := newTestService(t)
	req := failedCreate("tr_sales")
	req.TriggerType = ""

	m, err := svc.Create(context.Background(), "user-1", req, time.Now())
	require.NoError(t, err)
	require.Equal(t, TriggerFailed, m.TriggerType)
	require.Equal(t, "user-1", m.CreatedBy)
	require.Equal(t, "user-1", m.UpdatedBy)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	cases := []struct {
		name   string
		mutate func(*CreateRequest)
	}{
		{"missing trigger name", func(r *CreateRequest) { r.TriggerName = " " }},
		{"missing run id", func(r *CreateRequest) { r.RunID = "" }},
		{"bad status", func(r *CreateRequest) { r.Status = "EXPLODED" }},
		{"missing monitored by", func(r *CreateRequest) { r.MonitoredBy = "" }},
		{"bad handled shift", func(r *CreateRequest) { r.HandledShift = str("D") }},
		{"failed without failure shift", func(r *CreateRequest) { r.FailureShift = nil }},
		{"failed with bad failure shift", func(r *CreateRequest) { r.FailureShift = str("X") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := failedCreate("tr_sales")
			tc.mutate(&req)
			_, err := svc.Create(ctx, "user-1", req, now)
			require.Error(t, err)
		})
	}
}

func TestCreateFreshTriggerWithoutFailureShift(t *testing.T) {
	svc := newTestService(t)
	req := failedCreate("tr_fresh")
	req.TriggerType = TriggerFresh
	req.FailureShift = nil
	req.Status = "SUCCESS"

	m, err := svc.Create(context.Background(), "user-1", req, time.Now())
	require.NoError(t, err)
	require.Equal(t, TriggerFresh, m.TriggerType)
	require.Nil(t, m.FailureShift)
}

func TestListDefaultsToFailedTriggers(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Create(ctx, "user-1", failedCreate("tr_failed"), now)
	require.NoError(t, err)

	fresh := failedCreate("tr_fresh")
	fresh.TriggerType = TriggerFresh
	fresh.FailureShift = nil
	fresh.Status = "SUCCESS"
	_, err = svc.Create(ctx, "user-1", fresh, now)
	require.NoError(t, err)

	records, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "tr_failed", records[0].TriggerName)

	records, err = svc.List(ctx, ListQuery{TriggerType: TriggerFresh})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "tr_fresh", records[0].TriggerName)
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	older := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	reqA := failedCreate("tr_shift_a")
	reqA.FailureShift = str("A")
	_, err := svc.Create(ctx, "user-1", reqA, older)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-1", failedCreate("tr_shift_b"), newer)
	require.NoError(t, err)

	from := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	records, err := svc.List(ctx, ListQuery{DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "tr_shift_b", records[0].TriggerName)

	records, err = svc.List(ctx, ListQuery{Shift: "A"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "tr_shift_a", records[0].TriggerName)

	// newest first
	records, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "tr_shift_b", records[0].TriggerName)
}

func TestResolveRequiresResolver(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, "user-1", failedCreate("tr_sales"), time.Now())
	require.NoError(t, err)

	_, err = svc.Update(ctx, m.ID, "user-2", UpdateRequest{Action: ActionResolve}, time.Now())
	require.Error(t, err)

	_, err = svc.Update(ctx, m.ID, "user-2", UpdateRequest{
		Action:     ActionResolve,
		ResolvedBy: str("HELPDESK"),
	}, time.Now())
	require.Error(t, err)
}

func TestResolveSetsResolvedState(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, "user-1", failedCreate("tr_sales"), time.Now())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, m.ID, "user-2", UpdateRequest{
		Action:         ActionResolve,
		ResolvedBy:     str("L2"),
		ResolvedByUser: str("dana"),
	}, time.Now())
	require.NoError(t, err)
	require.NotNil(t, updated.CurrentStatus)
	require.Equal(t, StatusResolved, *updated.CurrentStatus)
	require.Equal(t, "L2", *updated.ResolvedBy)
	require.Equal(t, "dana", *updated.ResolvedByUser)
	require.Equal(t, "user-2", updated.UpdatedBy)
}

func TestIncidentRequiresAllFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, "user-1", failedCreate("tr_sales"), time.Now())
	require.NoError(t, err)

	full := UpdateRequest{
		Action:        ActionIncident,
		IncNumber:     str("INC0012345"),
		CurrentStatus: str(StatusInProgress),
		WorkingTeam:   str("L2_TEAM"),
	}

	missing := []func(UpdateRequest) UpdateRequest{
		func(r UpdateRequest) UpdateRequest { r.IncNumber = nil; return r },
		func(r UpdateRequest) UpdateRequest { r.CurrentStatus = nil; return r },
		func(r UpdateRequest) UpdateRequest { r.WorkingTeam = nil; return r },
		func(r UpdateRequest) UpdateRequest { r.CurrentStatus = str(StatusResolved); return r },
		func(r UpdateRequest) UpdateRequest { r.WorkingTeam = str("SOME_TEAM"); return r },
	}
	for _, drop := range missing {
		_, err := svc.Update(ctx, m.ID, "user-2", drop(full), time.Now())
		require.Error(t, err)
	}

	updated, err := svc.Update(ctx, m.ID, "user-2", full, time.Now())
	require.NoError(t, err)
	require.Equal(t, "INC0012345", *updated.IncNumber)
	require.Equal(t, StatusInProgress, *updated.CurrentStatus)
	require.Equal(t, "L2_TEAM", *updated.WorkingTeam)
}

func TestPlainEditRejectsResolutionFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, "user-1", failedCreate("tr_sales"), time.Now())
	require.NoError(t, err)

	_, err = svc.Update(ctx, m.ID, "user-2", UpdateRequest{
		ResolvedBy: str("L1"),
	}, time.Now())
	require.Error(t, err)

	_, err = svc.Update(ctx, m.ID, "user-2", UpdateRequest{
		IncNumber: str("INC0012345"),
	}, time.Now())
	require.Error(t, err)
}

func TestPlainEditUpdatesEditableFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	m, err := svc.Create(ctx, "user-1", failedCreate("tr_sales"), time.Now())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, m.ID, "user-2", UpdateRequest{
		HandledShift: str("C"),
		Status:       str("SUCCESS"),
		ReRunID:      str(" run-002 "),
		Comments:     str("re-ran after config fix"),
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, "C", *updated.HandledShift)
	require.Equal(t, "SUCCESS", updated.Status)
	require.Equal(t, "run-002", *updated.ReRunID)

	// frozen fields survive
	require.Equal(t, m.TriggerName, updated.TriggerName)
	require.Equal(t, m.RunID, updated.RunID)
	require.Equal(t, m.MonitoredBy, updated.MonitoredBy)
	require.Equal(t, m.FailureShift, updated.FailureShift)
}

func TestUpdateUnknownAction(t *testing.T) {
	svc := newTestService(t)
	m, err := svc.Create(context.Background(), "user-1", failedCreate("tr_sales"), time.Now())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), m.ID, "user-2", UpdateRequest{Action: "escalate"}, time.Now())
	require.Error(t, err)
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Update(context.Background(), "missing", "user-2", UpdateRequest{}, time.Now())
	require.Error(t, err)
}
