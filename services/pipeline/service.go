package pipeline

import (
	"context"
	"strings"

	"retailops-dashboard/pkg/db"
	"retailops-dashboard/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{db: p.DB, node: p.Node}
}

// List returns the caller's pipelines ordered by name then trigger.
func (s *Service) List(ctx context.Context, userID string) ([]*Pipeline, error) {
	var pipelines []*Pipeline
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC, trigger_name ASC").
		Find(&pipelines).Error
	if err != nil {
		zap.L().Error("failed to list pipelines", zap.Error(err))
		return nil, errutil.Internal("failed to fetch pipelines", errutil.WithErr(err))
	}
	return pipelines, nil
}

type CreateRequest struct {
	Name        string  `json:"name"`
	TriggerName string  `json:"triggerName"`
	Description *string `json:"description"`
}

func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*Pipeline, error) {
	name := strings.TrimSpace(req.Name)
	trigger := strings.TrimSpace(req.TriggerName)
	if name == "" {
		return nil, errutil.ValidationFailed("Pipeline name is required", "name")
	}
	if trigger == "" {
		return nil, errutil.ValidationFailed("Trigger name is required", "triggerName")
	}

	p := &Pipeline{
		ID:          s.node.Generate().String(),
		Name:        name,
		TriggerName: trigger,
		UserID:      userID,
	}
	if req.Description != nil {
		if desc := strings.TrimSpace(*req.Description); desc != "" {
			p.Description = &desc
		}
	}

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return nil, errutil.Conflict("Pipeline with this name already exists")
		}
		zap.L().Error("failed to create pipeline", zap.String("name", name), zap.Error(err))
		return nil, errutil.Internal("failed to create pipeline", errutil.WithErr(err))
	}
	return p, nil
}
