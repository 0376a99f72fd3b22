package main

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Runner drives one classification pass over the customer population.
// Customers are processed strictly sequentially with a pacing delay
// between iterations; a per-customer failure never aborts the run.
type Runner struct {
	store      Store
	classifier *Classifier
	windowSize int
	logEvery   int
	delay      time.Duration

	// sleep is injectable so tests can observe pacing without waiting.
	sleep func(time.Duration)
}

func NewRunner(cfg Config, store Store, classifier *Classifier) *Runner {
	return &Runner{
		store:      store,
		classifier: classifier,
		windowSize: cfg.WindowSize,
		logEvery:   cfg.BatchLogInterval,
		delay:      cfg.RequestDelay(),
		sleep:      time.Sleep,
	}
}

// ProcessCustomer runs the per-customer state machine:
// Unclassified -> {AlreadyClassified | NoMessages | Completed | Failed}.
func (r *Runner) ProcessCustomer(ctx context.Context, customerID string) (ProcessingOutcome, error) {
	// Re-check beyond the initial enumeration; another writer may have
	// classified this customer since the run started.
	exists, err := r.store.ExistsResult(ctx, customerID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("existence check for %s: %w", customerID, err)
	}
	if exists {
		log.Printf("customer %s already classified, skipping", customerID)
		return OutcomeAlreadyClassified, nil
	}

	window, err := r.store.FetchWindow(ctx, customerID, r.windowSize)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("fetch window for %s: %w", customerID, err)
	}
	if window.IsEmpty() {
		log.Printf("customer %s has no messages", customerID)
		return OutcomeNoMessages, nil
	}

	result := r.classifier.ClassifyConversation(ctx, window)

	waID, err := r.store.LookupWAID(ctx, customerID)
	if err != nil {
		log.Printf("wa_id lookup for %s failed: %v", customerID, err)
		waID = ""
	}

	if err := r.store.SaveResult(ctx, customerID, waID, result); err != nil {
		return OutcomeFailed, fmt.Errorf("persist result for %s: %w", customerID, err)
	}

	log.Printf("customer %s classified as: %s (confidence %.2f)", customerID, result.Tag, result.Confidence)
	return OutcomeCompleted, nil
}

// Run enumerates the unclassified customers once and processes each in
// population order, pacing between iterations. It returns aggregate
// counters; the only error case is failing to enumerate the population
// at all.
func (r *Runner) Run(ctx context.Context, population []string) (RunStats, error) {
	candidates, err := r.unclassified(ctx, population)
	if err != nil {
		return RunStats{}, err
	}
	log.Printf("run start: %d of %d customers still unclassified", len(candidates), len(population))

	var stats RunStats
	if len(candidates) == 0 {
		log.Println("all customers already classified")
		return stats, nil
	}

	for i, customerID := range candidates {
		if err := ctx.Err(); err != nil {
			log.Printf("run cancelled after %d customers: %v", i, err)
			return stats, err
		}

		outcome, procErr := r.ProcessCustomer(ctx, customerID)
		if procErr != nil {
			log.Printf("customer %s failed: %v", customerID, procErr)
		}
		stats.Record(outcome)

		if r.logEvery > 0 && (i+1)%r.logEvery == 0 {
			log.Printf("progress %d/%d (%s)", i+1, len(candidates), stats.Summary())
		}

		// Pace the remote capability; no delay after the last customer.
		if i < len(candidates)-1 && r.delay > 0 {
			r.sleep(r.delay)
		}
	}

	log.Printf("run complete: %s", stats.Summary())
	return stats, nil
}

// unclassified filters the population down to customers with no
// persisted result yet, preserving population order.
func (r *Runner) unclassified(ctx context.Context, population []string) ([]string, error) {
	var out []string
	for _, customerID := range population {
		exists, err := r.store.ExistsResult(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("enumerating unclassified customers: %w", err)
		}
		if !exists {
			out = append(out, customerID)
		}
	}
	return out, nil
}
