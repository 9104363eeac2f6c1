package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskLeadFollowUp = "leads.followup"

// LeadFollowUpPayload is the task payload for a lead follow-up
// reminder. DueAt carries the next step date the reminder was scheduled
// for; a lead whose date moved since is skipped by the worker.
type LeadFollowUpPayload struct {
	LeadID string    `json:"leadId"`
	Name   string    `json:"name"`
	DueAt  time.Time `json:"dueAt"`
}

func NewLeadFollowUpTask(payload LeadFollowUpPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadFollowUp, data), nil
}

func ParseLeadFollowUpPayload(task *asynq.Task) (LeadFollowUpPayload, error) {
	var payload LeadFollowUpPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadFollowUpPayload{}, err
	}
	return payload, nil
}
