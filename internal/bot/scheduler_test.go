package bot

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"tgbot_backend/pkg/logger"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	m.Run()
}

type fakeDeleter struct {
	mu       sync.Mutex
	calls    []deletion
	err      error
	block    chan struct{}
	active   int32
	maxSeen  int32
	notified chan struct{}
}

func newFakeDeleter() *fakeDeleter {
	return &fakeDeleter{notified: make(chan struct{}, 64)}
}

func (f *fakeDeleter) DeleteMessage(chatID int64, messageID int) error {
	cur := atomic.AddInt32(&f.active, 1)
	for {
		max := atomic.LoadInt32(&f.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&f.maxSeen, max, cur) {
			break
		}
	}

	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	f.calls = append(f.calls, deletion{chatID: chatID, messageID: messageID})
	f.mu.Unlock()

	atomic.AddInt32(&f.active, -1)
	f.notified <- struct{}{}
	return f.err
}

func (f *fakeDeleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func waitCalls(t *testing.T, d *fakeDeleter, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-d.notified:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delete attempt %d of %d", i+1, n)
		}
	}
}

func TestSchedulerDeletesAfterDelay(t *testing.T) {
	d := newFakeDeleter()
	s := NewScheduler(d, 2)
	defer s.Stop()

	s.Schedule(100, 7, 0)
	waitCalls(t, d, 1)

	assert.Equal(t, 1, d.callCount())
	assert.Equal(t, int64(100), d.calls[0].chatID)
	assert.Equal(t, 7, d.calls[0].messageID)
}

func TestSchedulerFailureIsSwallowed(t *testing.T) {
	d := newFakeDeleter()
	d.err = errors.New("message to delete not found")
	s := NewScheduler(d, 1)
	defer s.Stop()

	s.Schedule(1, 1, 0)
	waitCalls(t, d, 1)

	// 失败后调度器照常工作
	s.Schedule(1, 2, 0)
	waitCalls(t, d, 1)

	assert.Equal(t, 2, d.callCount())
}

func TestSchedulerDuplicatesFireTwice(t *testing.T) {
	d := newFakeDeleter()
	s := NewScheduler(d, 2)
	defer s.Stop()

	// 不去重，同一条消息调度两次就删两次
	s.Schedule(5, 42, 0)
	s.Schedule(5, 42, 0)
	waitCalls(t, d, 2)

	assert.Equal(t, 2, d.callCount())
}

func TestSchedulerOrdersByFireTime(t *testing.T) {
	d := newFakeDeleter()
	s := NewScheduler(d, 1)
	defer s.Stop()

	s.Schedule(1, 2, 150*time.Millisecond)
	s.Schedule(1, 1, 10*time.Millisecond)
	waitCalls(t, d, 2)

	require.Equal(t, 2, d.callCount())
	assert.Equal(t, 1, d.calls[0].messageID)
	assert.Equal(t, 2, d.calls[1].messageID)
}

func TestSchedulerBoundedConcurrency(t *testing.T) {
	d := newFakeDeleter()
	d.block = make(chan struct{})
	s := NewScheduler(d, 2)
	defer s.Stop()

	for i := 0; i < 6; i++ {
		s.Schedule(1, i, 0)
	}

	// 给调度器时间把能发的都发给worker
	time.Sleep(200 * time.Millisecond)
	close(d.block)
	waitCalls(t, d, 6)

	assert.Equal(t, 6, d.callCount())
	assert.LessOrEqual(t, atomic.LoadInt32(&d.maxSeen), int32(2))
}

func TestSchedulerStop(t *testing.T) {
	d := newFakeDeleter()
	s := NewScheduler(d, 2)

	s.Schedule(1, 1, time.Hour)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}

	// 未到期的条目被丢弃
	assert.Equal(t, 0, d.callCount())
}
