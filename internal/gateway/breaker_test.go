package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterThresholdFailures(t *testing.T) {
	b := newBreaker(breakerConfig{FailureThreshold: 3, OpenDuration: time.Minute, HalfOpenSuccess: 1})
	for i := 0; i < 2; i++ {
		b.RecordFailure()
		assert.True(t, b.Allow())
	}
	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_HalfOpenAfterOpenDurationElapses(t *testing.T) {
	b := newBreaker(breakerConfig{FailureThreshold: 1, OpenDuration: time.Millisecond, HalfOpenSuccess: 1})
	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())

	time.Sleep(5 * time.Millisecond)
	assert.True(t, b.Allow())
	assert.Equal(t, BreakerHalfOpen, b.State())
}

func TestBreaker_ClosesAfterHalfOpenSuccesses(t *testing.T) {
	b := newBreaker(breakerConfig{FailureThreshold: 1, OpenDuration: time.Millisecond, HalfOpenSuccess: 2})
	b.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	b.Allow()

	b.RecordSuccess()
	assert.Equal(t, BreakerHalfOpen, b.State())
	b.RecordSuccess()
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := newBreaker(breakerConfig{FailureThreshold: 1, OpenDuration: time.Millisecond, HalfOpenSuccess: 2})
	b.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	b.Allow()

	b.RecordFailure()
	assert.Equal(t, BreakerOpen, b.State())
}

func TestBreaker_SuccessResetsFailureCountWhenClosed(t *testing.T) {
	b := newBreaker(breakerConfig{FailureThreshold: 2, OpenDuration: time.Minute, HalfOpenSuccess: 1})
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	assert.Equal(t, BreakerClosed, b.State(), "success should have reset the failure streak")
}
