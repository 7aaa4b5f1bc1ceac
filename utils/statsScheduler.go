package utils

import (
	"log"

	"github.com/robfig/cron/v3"

	"learnhub/services"
)

// InitializeStatsScheduler starts the background recompute jobs: the retry
// drain every minute and the full consistency sweep nightly.
func InitializeStatsScheduler() *cron.Cron {
	log.Println("[STATS-SCHEDULER] Initializing stats scheduler...")

	c := cron.New()

	c.AddFunc("* * * * *", func() {
		services.DrainRetries()
	})

	c.AddFunc("45 3 * * *", func() {
		log.Println("[STATS-SCHEDULER] Running nightly consistency sweep...")
		services.NightlySweep()
	})

	c.Start()
	log.Println("[STATS-SCHEDULER] Stats scheduler started - retry drain every minute, sweep at 3:45 AM")
	return c
}
