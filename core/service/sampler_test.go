package service

import (
	"errors"
	"testing"

	"vigil/core/models"

	"github.com/stretchr/testify/assert"
)

func staticSampler(cpu, memory, diskPct float64) *Sampler {
	return &Sampler{
		diskPath: "/",
		cpuFn:    func() (float64, error) { return cpu, nil },
		memFn:    func() (float64, error) { return memory, nil },
		diskFn:   func(string) (float64, error) { return diskPct, nil },
	}
}

func TestSampleStatusThresholds(t *testing.T) {
	tests := []struct {
		name       string
		cpu, mem   float64
		wantStatus string
	}{
		{"idle", 10, 20, models.StatusHealthy},
		{"just below threshold", 79.9, 79.9, models.StatusHealthy},
		{"cpu at threshold", 80, 10, models.StatusWarning},
		{"memory at threshold", 10, 80, models.StatusWarning},
		{"both high", 95, 97, models.StatusWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample := staticSampler(tt.cpu, tt.mem, 50).Sample()
			assert.Equal(t, tt.wantStatus, sample.Status)
		})
	}
}

func TestSampleClampsValues(t *testing.T) {
	sample := staticSampler(150, -5, 101).Sample()
	assert.Equal(t, 100.0, sample.CPUPercent)
	assert.Equal(t, 0.0, sample.MemoryPercent)
	assert.Equal(t, 100.0, sample.DiskPercent)
}

func TestSampleSubstitutesPreviousOnReadFailure(t *testing.T) {
	failing := false
	s := &Sampler{
		diskPath: "/",
		cpuFn: func() (float64, error) {
			if failing {
				return 0, errors.New("proc unreadable")
			}
			return 42, nil
		},
		memFn:  func() (float64, error) { return 60, nil },
		diskFn: func(string) (float64, error) { return 70, nil },
	}

	first := s.Sample()
	assert.Equal(t, 42.0, first.CPUPercent)

	failing = true
	second := s.Sample()
	assert.Equal(t, 42.0, second.CPUPercent, "previous sample substituted on failure")
	assert.Equal(t, 60.0, second.MemoryPercent)
	assert.True(t, second.Timestamp.After(first.Timestamp) || second.Timestamp.Equal(first.Timestamp))
}

func TestSampleFirstReadFailure(t *testing.T) {
	s := &Sampler{
		diskPath: "/",
		cpuFn:    func() (float64, error) { return 0, errors.New("unreadable") },
		memFn:    func() (float64, error) { return 0, nil },
		diskFn:   func(string) (float64, error) { return 0, nil },
	}

	sample := s.Sample()
	assert.Equal(t, models.StatusHealthy, sample.Status)
	assert.Zero(t, sample.CPUPercent)
}
