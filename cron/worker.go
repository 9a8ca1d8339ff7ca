package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"beautybot/config"
	"beautybot/models"
	"beautybot/services/calendar"

	"github.com/hibiken/asynq"
)

// InitCalendarWorker runs the async worker in background.
func InitCalendarWorker(calSvc calendar.Service) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(models.TypeCalendarEventTask, handleCalendarEventTask(calSvc))

	// Start async worker with retry logic
	go func() {
		log.Println("[CalendarWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[CalendarWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[CalendarWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

func handleCalendarEventTask(calSvc calendar.Service) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.CalendarEventPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[CalendarWorker] invalid payload: %v", err)
			return err
		}

		link, err := calSvc.CreateEvent(ctx, p.CalendarID, &p.Appointment)
		if err != nil {
			// Returning the error lets asynq retry the task.
			log.Printf("[CalendarWorker] failed to create event for appointment %s: %v", p.Appointment.ID, err)
			return err
		}
		log.Printf("[CalendarWorker] event created: %s", link)
		return nil
	}
}
