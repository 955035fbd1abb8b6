package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManual_NewTimerAdvancesAndRecords(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewManual(start)

	timer := c.NewTimer(3 * time.Second)
	fired := <-timer.C()
	assert.Equal(t, start.Add(3*time.Second), fired)
	assert.False(t, timer.Stop())

	c.Advance(time.Minute)
	<-c.NewTimer(5 * time.Second).C()

	assert.Equal(t, start.Add(time.Minute+8*time.Second), c.Now())
	assert.Equal(t, []time.Duration{3 * time.Second, 5 * time.Second}, c.Sleeps())
}

func TestReal_StopBeforeFiring(t *testing.T) {
	timer := Real{}.NewTimer(time.Hour)
	assert.True(t, timer.Stop())

	select {
	case <-timer.C():
		t.Fatal("stopped timer fired")
	case <-time.After(20 * time.Millisecond):
	}
}
