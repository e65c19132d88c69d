package summary

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retailops-dashboard/services/monitoring"
	"retailops-dashboard/services/shiftrecord"
	"retailops-dashboard/services/task"
	"retailops-dashboard/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func TestCurrentShift(t *testing.T) {
	cases := []struct {
		utcHour int
		want    string
	}{
		{3, "A"},  // 08:30 IST
		{10, "B"}, // 15:30 IST
		{18, "C"}, // 23:30 IST
		{0, "C"},  // 05:30 IST, before shift A starts
	}

	for _, tc := range cases {
		now := time.Date(2025, 6, 4, tc.utcHour, 0, 0, 0, time.UTC)
		require.Equal(t, tc.want, CurrentShift(now), "utc hour %d", tc.utcHour)
	}
}

func TestBuildCounts(t *testing.T) {
	db := testutil.NewTestDB(t,
		&task.Task{},
		&monitoring.PipelineMonitoring{},
		&shiftrecord.PipelineMonitoringRecord{},
	)
	svc := NewService(ServiceParams{DB: db})

	// Wednesday 10:00 UTC = 15:30 IST, shift B
	now := time.Date(2025, 6, 4, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&task.Task{ID: "t1", Retailer: "Daily Mart", Schedule: "daily"}).Error)
	require.NoError(t, db.Create(&task.Task{ID: "t2", Retailer: "Weekend Mart", Schedule: "custom", ScheduleDays: "sun,sat"}).Error)

	shiftB := "B"
	resolved := monitoring.StatusResolved
	require.NoError(t, db.Create(&monitoring.PipelineMonitoring{
		ID: "m1", Date: now, TriggerType: monitoring.TriggerFailed,
		FailureShift: &shiftB, TriggerName: "tr_a", RunID: "r1",
		Status: "FAILED", MonitoredBy: "dana",
	}).Error)
	require.NoError(t, db.Create(&monitoring.PipelineMonitoring{
		ID: "m2", Date: now, TriggerType: monitoring.TriggerFailed,
		FailureShift: &shiftB, TriggerName: "tr_b", RunID: "r2",
		Status: "FAILED", MonitoredBy: "dana", CurrentStatus: &resolved,
	}).Error)

	today := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&shiftrecord.PipelineMonitoringRecord{
		ID: "r1", MonitoringDate: today, ShiftIST: "B", ADFPipelineName: "pl_a",
	}).Error)
	require.NoError(t, db.Create(&shiftrecord.PipelineMonitoringRecord{
		ID: "r2", MonitoringDate: today, ShiftIST: "C", ADFPipelineName: "pl_a",
	}).Error)

	s, err := svc.Build(context.Background(), now)
	require.NoError(t, err)
	require.Equal(t, "B", s.CurrentShift)
	require.EqualValues(t, 1, s.TasksDueToday, "weekend-only task not due on Wednesday")
	require.EqualValues(t, 1, s.UnresolvedFailures)
	require.EqualValues(t, 1, s.RosterRecordsToday)
}
