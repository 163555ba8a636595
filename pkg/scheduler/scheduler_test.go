package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type countingScanner struct {
	calls int32
	count int
	err   error
}

func (c *countingScanner) SendReorderDigest(ctx context.Context) (int, error) {
	atomic.AddInt32(&c.calls, 1)
	return c.count, c.err
}

func (c *countingScanner) Calls() int32 {
	return atomic.LoadInt32(&c.calls)
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	logger, _ := test.NewNullLogger()
	scanner := &countingScanner{count: 2}

	s := NewScheduler(scanner, logger)
	s.Start(10 * time.Millisecond)

	assert.Eventually(t, func() bool { return scanner.Calls() >= 3 }, time.Second, 5*time.Millisecond)

	s.Stop()
	stopped := scanner.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, scanner.Calls())
}

func TestScheduler_StartTwiceRunsOneLoop(t *testing.T) {
	logger, _ := test.NewNullLogger()
	scanner := &countingScanner{}

	s := NewScheduler(scanner, logger)
	s.Start(time.Hour)
	s.Start(time.Hour)

	assert.Eventually(t, func() bool { return scanner.Calls() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), scanner.Calls())

	s.Stop()
	s.Stop()
}

func TestScheduler_LogsScanErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	scanner := &countingScanner{err: errors.New("smtp down")}

	s := NewScheduler(scanner, logger)
	s.Start(time.Hour)
	assert.Eventually(t, func() bool { return scanner.Calls() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	var failed bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			failed = true
			assert.Contains(t, entry.Message, "smtp down")
		}
	}
	assert.True(t, failed)
}
