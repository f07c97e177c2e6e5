package clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClockSet(t *testing.T) {
	clk := NewFakeClock(time.Date(2024, time.May, 31, 23, 0, 0, 0, time.UTC))
	next := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	clk.Set(next)
	assert.Equal(t, next, clk.Now())
}

func TestFakeClockConcurrentUse(t *testing.T) {
	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	clk := NewFakeClock(start)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			clk.Advance(time.Second)
		}()
		go func() {
			defer wg.Done()
			_ = clk.Now()
		}()
	}
	wg.Wait()

	assert.Equal(t, start.Add(8*time.Second), clk.Now())
}
