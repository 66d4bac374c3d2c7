// Package watchdog implements the self-healing loop: it polls the API's
// health surface, tracks consecutive failures, and restarts the supervised
// service when the API stays unhealthy.
package watchdog

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"vigil/core/models"
	"vigil/core/repository"
)

// Phase is the watchdog's position in its recovery state machine.
type Phase int

const (
	PhaseHealthy Phase = iota
	PhaseDegraded
	PhaseCritical
	PhaseRemediating
	PhaseCooldown
)

func (p Phase) String() string {
	switch p {
	case PhaseHealthy:
		return "healthy"
	case PhaseDegraded:
		return "degraded"
	case PhaseCritical:
		return "critical"
	case PhaseRemediating:
		return "remediating"
	case PhaseCooldown:
		return "cooldown"
	default:
		return "unknown"
	}
}

// Supervisor is the restart contract the watchdog invokes on sustained
// failure. Restart must be idempotent while a restart is already running.
type Supervisor interface {
	Restart(ctx context.Context, service string) error
}

// Options configures a Watchdog.
type Options struct {
	// HealthURL is the API health endpoint to poll.
	HealthURL string
	// Service is the identifier passed to the supervisor's restart action.
	Service string
	// FailureThreshold is the number of consecutive failed checks that
	// triggers remediation.
	FailureThreshold int
	// CheckTimeout bounds each health check call.
	CheckTimeout time.Duration
	// Cooldown suppresses further remediation after a restart.
	Cooldown time.Duration
}

// Watchdog drives the health-check-and-remediate state machine. It is
// single-threaded: Tick must not be called concurrently, and the run loop
// never starts a tick before the previous one finishes.
type Watchdog struct {
	opts       Options
	client     *http.Client
	supervisor Supervisor
	events     repository.EventStore

	consecutiveFailures int
	phase               Phase
	cooldownUntil       time.Time
	lastRemediationAt   time.Time

	now func() time.Time
}

// New creates a watchdog.
func New(opts Options, supervisor Supervisor, events repository.EventStore) *Watchdog {
	return &Watchdog{
		opts:       opts,
		client:     &http.Client{Timeout: opts.CheckTimeout},
		supervisor: supervisor,
		events:     events,
		phase:      PhaseHealthy,
		now:        time.Now,
	}
}

// Phase returns the current state machine phase.
func (w *Watchdog) Phase() Phase {
	return w.phase
}

// ConsecutiveFailures returns the current failed-check streak.
func (w *Watchdog) ConsecutiveFailures() int {
	return w.consecutiveFailures
}

// Run ticks the state machine at the given interval until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context, interval time.Duration) {
	log.Printf("Watchdog started (interval: %v, threshold: %d, timeout: %v, cooldown: %v)",
		interval, w.opts.FailureThreshold, w.opts.CheckTimeout, w.opts.Cooldown)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Tick(ctx)
		case <-ctx.Done():
			log.Println("Watchdog stopped")
			return
		}
	}
}

// Tick runs one health-check-and-possibly-remediate cycle.
func (w *Watchdog) Tick(ctx context.Context) {
	now := w.now()

	if w.phase == PhaseCooldown {
		if now.Before(w.cooldownUntil) {
			// Transitions are suppressed for the whole window regardless
			// of health-check outcome, to avoid restart storms.
			log.Printf("In cooldown until %s, skipping evaluation", w.cooldownUntil.Format(time.RFC3339))
			return
		}
		w.phase = PhaseHealthy
		w.consecutiveFailures = 0
	}

	if err := w.checkHealth(ctx); err == nil {
		if w.consecutiveFailures > 0 {
			log.Printf("Health restored after %d failed checks", w.consecutiveFailures)
		}
		w.consecutiveFailures = 0
		w.phase = PhaseHealthy
		return
	} else {
		log.Printf("Health check failed: %v", err)
	}

	w.consecutiveFailures++
	if w.consecutiveFailures < w.opts.FailureThreshold {
		w.phase = PhaseDegraded
		return
	}

	w.phase = PhaseCritical
	w.remediate(ctx)
}

// checkHealth calls the API health endpoint with a bounded timeout. A
// timeout counts as a failed check.
func (w *Watchdog) checkHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.opts.CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.opts.HealthURL, nil)
	if err != nil {
		return err
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// remediate records the remediation event, invokes the restart contract,
// and enters cooldown. The event is written first: the event log is the
// only audit trail of autonomous action.
func (w *Watchdog) remediate(ctx context.Context) {
	w.phase = PhaseRemediating
	now := w.now()

	log.Printf("Remediating: restarting %s after %d consecutive failed checks",
		w.opts.Service, w.consecutiveFailures)

	w.recordEvent("remediation", fmt.Sprintf(
		"Restarting service %s after %d consecutive failed health checks",
		w.opts.Service, w.consecutiveFailures,
	), models.SeverityCritical)

	if err := w.supervisor.Restart(ctx, w.opts.Service); err != nil {
		// The restart contract itself is unreachable. Log it as a critical
		// event and wait out the cooldown rather than retrying in a tight
		// loop.
		log.Printf("Restart of %s failed: %v", w.opts.Service, err)
		w.recordEvent("remediation", fmt.Sprintf(
			"Restart of service %s failed: %v", w.opts.Service, err,
		), models.SeverityCritical)
	} else {
		w.lastRemediationAt = now
	}

	w.phase = PhaseCooldown
	w.cooldownUntil = now.Add(w.opts.Cooldown)
	w.consecutiveFailures = 0
	log.Printf("Entering cooldown until %s", w.cooldownUntil.Format(time.RFC3339))
}

func (w *Watchdog) recordEvent(eventType, description, severity string) {
	event := &models.SystemEvent{
		EventType:   eventType,
		Description: description,
		Severity:    severity,
		Timestamp:   w.now().UTC(),
	}
	if err := w.events.Create(event); err != nil {
		log.Printf("Failed to store %s event: %v", eventType, err)
	}
}
