package booking

import (
	"encoding/json"
	"fmt"

	"beautybot/models"

	"github.com/hibiken/asynq"
)

// AsynqNotifier queues calendar events for the background worker. Retries are
// the queue's job; the commit path only hands the task over.
type AsynqNotifier struct {
	client *asynq.Client
}

func NewAsynqNotifier(client *asynq.Client) *AsynqNotifier {
	return &AsynqNotifier{client: client}
}

func (n *AsynqNotifier) EnqueueEvent(appt *models.Appointment, calendarID string) error {
	payload, err := json.Marshal(models.CalendarEventPayload{
		Appointment: *appt,
		CalendarID:  calendarID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal calendar event payload: %w", err)
	}
	task := asynq.NewTask(models.TypeCalendarEventTask, payload)
	if _, err := n.client.Enqueue(task, asynq.MaxRetry(5), asynq.Queue("default")); err != nil {
		return fmt.Errorf("failed to enqueue calendar event: %w", err)
	}
	return nil
}
