package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// RunScheduled reruns the batch on a 5-field cron expression (minute
// hour day-of-month month day-of-week), e.g. "0 3 * * *" for daily
// 3am. Idempotency makes repeated runs safe: already-classified
// customers are skipped. Blocks until ctx is cancelled.
func RunScheduled(ctx context.Context, schedule string, runOnce func(context.Context)) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(strings.TrimSpace(schedule))
	if err != nil {
		return err
	}
	log.Printf("scheduled mode (cron: %s)", schedule)

	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		log.Printf("next run at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		runOnce(ctx)
	}
}
