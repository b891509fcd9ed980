package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskMeetingReminder = "leads.meeting_reminder"

type MeetingReminderPayload struct {
	LeadID    string `json:"leadId"`
	MeetingID string `json:"meetingId"`
}

func NewMeetingReminderTask(payload MeetingReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMeetingReminder, data), nil
}

func ParseMeetingReminderPayload(task *asynq.Task) (MeetingReminderPayload, error) {
	var payload MeetingReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return MeetingReminderPayload{}, err
	}
	return payload, nil
}
