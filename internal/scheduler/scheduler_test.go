package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextTriggerToday(t *testing.T) {
	now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local)
	next := NextTrigger(now, "09:30")
	assert.Equal(t, time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local), next)
}

func TestNextTriggerTomorrow(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 0, 0, 0, time.Local)
	next := NextTrigger(now, "09:30")
	assert.Equal(t, time.Date(2025, 3, 11, 9, 30, 0, 0, time.Local), next)
}

func TestNextTriggerExactlyNow(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)
	next := NextTrigger(now, "09:30")
	assert.Equal(t, now.AddDate(0, 0, 1), next, "a trigger landing on now fires tomorrow")
}

func TestNextTriggerMalformed(t *testing.T) {
	now := time.Date(2025, 3, 10, 7, 0, 0, 0, time.Local)
	for _, bad := range []string{"", "9:99", "25:00", "morning", "09-30"} {
		next := NextTrigger(now, bad)
		assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local), next, "input %q", bad)
	}
}
