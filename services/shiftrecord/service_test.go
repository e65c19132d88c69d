package shiftrecord

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"retailops-dashboard/pkg/errutil"
	"retailops-dashboard/services/pipeline"
	"retailops-dashboard/services/testutil"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &pipeline.Pipeline{}, &PipelineMonitoringRecord{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewService(ServiceParams{DB: db, Node: node}), db
}

func seedPipelines(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()
	for i, name := range names {
		require.NoError(t, db.Create(&pipeline.Pipeline{
			ID:          fmt.Sprintf("pl-%d", i),
			Name:        name,
			TriggerName: "tr_" + name,
			UserID:      "user-1",
		}).Error)
	}
}

func str(s string) *string { return &s }

func TestCreateShiftRecordsRequiresValidShift(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateShiftRecords(context.Background(), "D", nil, time.Now())
	require.Error(t, err)
}

func TestCreateShiftRecordsFailsFastOnEmptyCatalog(t *testing.T) {
	svc, db := newTestService(t)
	_, err := svc.CreateShiftRecords(context.Background(), "B", nil, time.Now())
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&PipelineMonitoringRecord{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateShiftRecordsSkipsExisting(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	seedPipelines(t, db, "pl_a", "pl_b", "pl_c", "pl_d", "pl_e")

	date := time.Date(2025, 6, 3, 14, 30, 0, 0, time.UTC)

	// pre-create records for two of the five pipelines
	for _, name := range []string{"pl_b", "pl_d"} {
		_, err := svc.Create(ctx, CreateRequest{
			MonitoringDate:  &date,
			ShiftIST:        "B",
			ADFPipelineName: name,
		}, time.Now())
		require.NoError(t, err)
	}

	result, err := svc.CreateShiftRecords(ctx, "B", &date, time.Now())
	require.NoError(t, err)
	require.Len(t, result.Created, 3)
	require.ElementsMatch(t, []string{"pl_b", "pl_d"}, result.Skipped)
	require.Equal(t, "Created 3 monitoring records for B shift (2 already exist)", result.Message)

	// second identical call creates nothing
	result, err = svc.CreateShiftRecords(ctx, "B", &date, time.Now())
	require.NoError(t, err)
	require.Empty(t, result.Created)
	require.Len(t, result.Skipped, 5)
	require.Equal(t, "Created 0 monitoring records for B shift (5 already exist)", result.Message)
}

func TestCreateShiftRecordsDedupesCatalogByName(t *testing.T) {
	svc, db := newTestService(t)
	seedPipelines(t, db, "pl_dup")
	require.NoError(t, db.Create(&pipeline.Pipeline{
		ID:          "pl-other-owner",
		Name:        "pl_dup",
		TriggerName: "tr_other",
		UserID:      "user-2",
	}).Error)

	result, err := svc.CreateShiftRecords(context.Background(), "A", nil, time.Now())
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	require.Empty(t, result.Skipped)
	require.Equal(t, "tr_pl_dup", *result.Created[0].ADFTriggerName)
}

func TestCreateShiftRecordsPerShiftIndependence(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	seedPipelines(t, db, "pl_a", "pl_b")

	date := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	for _, shift := range []string{"A", "B", "C"} {
		result, err := svc.CreateShiftRecords(ctx, shift, &date, time.Now())
		require.NoError(t, err)
		require.Len(t, result.Created, 2)
	}

	var count int64
	require.NoError(t, db.Model(&PipelineMonitoringRecord{}).Count(&count).Error)
	require.EqualValues(t, 6, count)
}

func TestCreateSingleRecordConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	date := time.Date(2025, 6, 3, 8, 0, 0, 0, time.UTC)

	req := CreateRequest{
		MonitoringDate:  &date,
		ShiftIST:        "A",
		ADFPipelineName: "pl_sales",
	}
	_, err := svc.Create(ctx, req, time.Now())
	require.NoError(t, err)

	// same date at a different clock time still collides
	later := date.Add(5 * time.Hour)
	req.MonitoringDate = &later
	_, err = svc.Create(ctx, req, time.Now())
	require.True(t, errutil.IsConflict(err))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateRequest{ShiftIST: "Z", ADFPipelineName: "pl"}, time.Now())
	require.Error(t, err)

	_, err = svc.Create(ctx, CreateRequest{ShiftIST: "A", ADFPipelineName: "  "}, time.Now())
	require.Error(t, err)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	d1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	for _, c := range []struct {
		date  time.Time
		shift string
		name  string
	}{
		{d1, "A", "pl_old"},
		{d2, "B", "pl_new"},
	} {
		date := c.date
		_, err := svc.Create(ctx, CreateRequest{
			MonitoringDate:  &date,
			ShiftIST:        c.shift,
			ADFPipelineName: c.name,
		}, time.Now())
		require.NoError(t, err)
	}

	from := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	records, err := svc.List(ctx, ListQuery{DateFrom: &from})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "pl_new", records[0].ADFPipelineName)

	records, err = svc.List(ctx, ListQuery{Shift: "A"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "pl_old", records[0].ADFPipelineName)

	records, err = svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "pl_new", records[0].ADFPipelineName, "newest first")
}

func TestUpdatePartialEdit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateRequest{
		ShiftIST:        "C",
		ADFPipelineName: "pl_sales",
	}, time.Now())
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, UpdateRequest{
		OverallExecutionStatus: str("SUCCESS"),
		MonitoredBy:            str(" dana "),
		AdditionalComments:     str(""),
	}, time.Now())
	require.NoError(t, err)
	require.Equal(t, "SUCCESS", *updated.OverallExecutionStatus)
	require.Equal(t, "dana", *updated.MonitoredBy)
	require.Nil(t, updated.AdditionalComments)

	// key fields untouched
	require.Equal(t, created.ShiftIST, updated.ShiftIST)
	require.Equal(t, created.ADFPipelineName, updated.ADFPipelineName)
}

func TestUpdateNotFound(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Update(context.Background(), "missing", UpdateRequest{}, time.Now())
	require.Error(t, err)
}
