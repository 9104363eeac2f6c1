package scheduler

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLeadFollowUpTaskRoundTrip(t *testing.T) {
	due := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	payload := LeadFollowUpPayload{
		LeadID: uuid.New().String(),
		Name:   "Jeanne Martin",
		DueAt:  due,
	}

	task, err := NewLeadFollowUpTask(payload)
	if err != nil {
		t.Fatalf("NewLeadFollowUpTask() error = %v", err)
	}
	if task.Type() != TaskLeadFollowUp {
		t.Errorf("task type = %q, want %q", task.Type(), TaskLeadFollowUp)
	}

	parsed, err := ParseLeadFollowUpPayload(task)
	if err != nil {
		t.Fatalf("ParseLeadFollowUpPayload() error = %v", err)
	}
	if parsed.LeadID != payload.LeadID {
		t.Errorf("LeadID = %q, want %q", parsed.LeadID, payload.LeadID)
	}
	if parsed.Name != payload.Name {
		t.Errorf("Name = %q, want %q", parsed.Name, payload.Name)
	}
	if !parsed.DueAt.Equal(due) {
		t.Errorf("DueAt = %v, want %v", parsed.DueAt, due)
	}
}
