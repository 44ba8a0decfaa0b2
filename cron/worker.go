package cron

import (
	"log"
	"time"

	"tablecall/config"
	bookingRepo "tablecall/database/repository/booking"
	"tablecall/services/booking"

	"github.com/hibiken/asynq"
)

// InitWatchdogWorker runs the async watchdog worker in background.
func InitWatchdogWorker(repo bookingRepo.BookingRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisWatchdogDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(booking.TypeCallTimeout, booking.HandleCallTimeout(repo))

	// Start async worker with retry logic
	go func() {
		log.Println("[Watchdog] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Watchdog] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Watchdog] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}
