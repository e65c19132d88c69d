package autotask

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// TypeProcess is the asynq task that runs a transform in the background.
const TypeProcess = "autotask:process"

type processPayload struct {
	TaskID   string `json:"taskId"`
	UserID   string `json:"userId"`
	TaskType string `json:"taskType"`
}

// NewProcessTask builds the asynq task for a background transform run.
func NewProcessTask(taskID, userID, taskType string) (*asynq.Task, error) {
	payload, err := json.Marshal(processPayload{TaskID: taskID, UserID: userID, TaskType: taskType})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProcess, payload, asynq.Queue("low"), asynq.MaxRetry(3)), nil
}

// RegisterWorker wires the background transform handler onto the worker mux.
func RegisterWorker(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(TypeProcess, func(ctx context.Context, t *asynq.Task) error {
		var p processPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return err
		}

		key, err := svc.Process(ctx, p.TaskID, p.UserID, p.TaskType, time.Now())
		if err != nil {
			return err
		}
		zap.L().Info("background transform completed",
			zap.String("task_id", p.TaskID), zap.String("output_key", key))
		return nil
	})
}
