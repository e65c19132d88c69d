package summary

import (
	"context"
	"time"

	"retailops-dashboard/pkg/errutil"
	"retailops-dashboard/services/monitoring"
	"retailops-dashboard/services/schedule"
	"retailops-dashboard/services/shiftrecord"
	"retailops-dashboard/services/task"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// istZone is the reference clock for shift boundaries.
var istZone = time.FixedZone("IST", 5*3600+1800)

// CurrentShift maps an instant to the IST shift covering it:
// A 06:00-14:00, B 14:00-22:00, C 22:00-06:00.
func CurrentShift(now time.Time) string {
	switch hour := now.In(istZone).Hour(); {
	case hour >= 6 && hour < 14:
		return "A"
	case hour >= 14 && hour < 22:
		return "B"
	default:
		return "C"
	}
}

// Summary is the dashboard's headline counters.
type Summary struct {
	TasksDueToday      int64  `json:"tasksDueToday"`
	UnresolvedFailures int64  `json:"unresolvedFailures"`
	RosterRecordsToday int64  `json:"rosterRecordsToday"`
	CurrentShift       string `json:"currentShift"`
	Date               string `json:"date"`
}

type Service struct {
	db *gorm.DB
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB
}

func NewService(p ServiceParams) *Service {
	return &Service{db: p.DB}
}

// Build gathers the three counters concurrently.
func (s *Service) Build(ctx context.Context, now time.Time) (*Summary, error) {
	out := &Summary{
		CurrentShift: CurrentShift(now),
		Date:         now.UTC().Format("2006-01-02"),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var tasks []*task.Task
		if err := s.db.WithContext(ctx).
			Select("id", "schedule", "schedule_days").
			Find(&tasks).Error; err != nil {
			return err
		}
		var due int64
		for _, t := range tasks {
			rule := schedule.Normalize(t.Schedule)
			if schedule.IsDue(rule, schedule.ParseDays(t.ScheduleDays), now) {
				due++
			}
		}
		out.TasksDueToday = due
		return nil
	})

	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&monitoring.PipelineMonitoring{}).
			Where("trigger_type = ?", monitoring.TriggerFailed).
			Where("current_status IS NULL OR current_status != ?", monitoring.StatusResolved).
			Count(&out.UnresolvedFailures).Error
	})

	g.Go(func() error {
		y, m, d := now.UTC().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return s.db.WithContext(ctx).Model(&shiftrecord.PipelineMonitoringRecord{}).
			Where("monitoring_date = ? AND shift_ist = ?", today, out.CurrentShift).
			Count(&out.RosterRecordsToday).Error
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("failed to build summary", zap.Error(err))
		return nil, errutil.Internal("failed to build summary", errutil.WithErr(err))
	}
	return out, nil
}
