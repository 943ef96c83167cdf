package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// TaskOverdueScan marks due follow-ups overdue and notifies owning agents.
const TaskOverdueScan = "followups.overdue.scan"

// TaskCacheResync recomputes the follow-up cache of every active lead.
const TaskCacheResync = "followups.cache.resync"

type OverdueScanPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

type CacheResyncPayload struct {
	RequestedAt time.Time `json:"requestedAt"`
}

func NewOverdueScanTask(payload OverdueScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueScan, data), nil
}

func ParseOverdueScanPayload(task *asynq.Task) (OverdueScanPayload, error) {
	var payload OverdueScanPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OverdueScanPayload{}, err
	}
	return payload, nil
}

func NewCacheResyncTask(payload CacheResyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCacheResync, data), nil
}

func ParseCacheResyncPayload(task *asynq.Task) (CacheResyncPayload, error) {
	var payload CacheResyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return CacheResyncPayload{}, err
	}
	return payload, nil
}
