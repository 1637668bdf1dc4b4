package clockx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManual_FiresOnlyWhenDue(t *testing.T) {
	c := NewManual(epoch)
	fired := 0
	c.AfterFunc(1500*time.Millisecond, func() { fired++ })

	c.Advance(1499 * time.Millisecond)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, c.Pending())

	c.Advance(time.Millisecond)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, c.Pending())

	c.Advance(time.Hour)
	assert.Equal(t, 1, fired, "callbacks fire once")
}

func TestManual_DeadlineOrderAndNowInsideCallback(t *testing.T) {
	c := NewManual(epoch)
	var order []string
	var seen []time.Time

	c.AfterFunc(3*time.Second, func() { order = append(order, "image"); seen = append(seen, c.Now()) })
	c.AfterFunc(1500*time.Millisecond, func() { order = append(order, "chat-1"); seen = append(seen, c.Now()) })
	c.AfterFunc(1500*time.Millisecond, func() { order = append(order, "chat-2"); seen = append(seen, c.Now()) })

	c.Advance(5 * time.Second)

	require.Equal(t, []string{"chat-1", "chat-2", "image"}, order)
	assert.Equal(t, epoch.Add(1500*time.Millisecond), seen[0])
	assert.Equal(t, epoch.Add(3*time.Second), seen[2])
	assert.Equal(t, epoch.Add(5*time.Second), c.Now())
}

func TestManual_StopPreventsCallback(t *testing.T) {
	c := NewManual(epoch)
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())

	c.Advance(2 * time.Second)
	assert.False(t, fired)
}

func TestManual_CallbackCanScheduleWithinWindow(t *testing.T) {
	c := NewManual(epoch)
	var order []int

	c.AfterFunc(time.Second, func() {
		order = append(order, 1)
		c.AfterFunc(time.Second, func() { order = append(order, 2) })
	})

	c.Advance(3 * time.Second)
	assert.Equal(t, []int{1, 2}, order)
}

func TestReal_AfterFuncFires(t *testing.T) {
	c := Real()
	done := make(chan struct{})
	c.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer did not fire")
	}
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
}
