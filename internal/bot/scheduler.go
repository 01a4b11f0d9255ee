package bot

import (
	"container/heap"
	"sync"
	"tgbot_backend/pkg/logger"
	"tgbot_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// Deleter 调度器需要的唯一传输能力
type Deleter interface {
	DeleteMessage(chatID int64, messageID int) error
}

type deletion struct {
	chatID    int64
	messageID int
	fireAt    time.Time
}

// deletionQueue 按触发时间排序的最小堆
type deletionQueue []deletion

func (q deletionQueue) Len() int            { return len(q) }
func (q deletionQueue) Less(i, j int) bool  { return q[i].fireAt.Before(q[j].fireAt) }
func (q deletionQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *deletionQueue) Push(x interface{}) { *q = append(*q, x.(deletion)) }
func (q *deletionQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Scheduler 延迟删除消息的调度器。
//
// 所有待删除条目进同一个最小堆，由单个分发协程取出到期条目，
// 交给固定数量的worker执行删除，同时在途的删除请求数量不随消息量增长。
//
// 调度即送达：不支持取消，不去重，也不保证同一个聊天里的删除顺序。
// 删除失败（消息已被删、权限丢失、超出平台时限）是预期内结果，只记日志。
type Scheduler struct {
	deleter Deleter

	mu    sync.Mutex
	queue deletionQueue
	wake  chan struct{}

	jobs chan deletion
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewScheduler 创建并启动调度器，workers决定并发删除的上限
func NewScheduler(deleter Deleter, workers int) *Scheduler {
	if workers <= 0 {
		workers = 1
	}

	s := &Scheduler{
		deleter: deleter,
		wake:    make(chan struct{}, 1),
		jobs:    make(chan deletion),
		stop:    make(chan struct{}),
	}
	heap.Init(&s.queue)

	s.wg.Add(1)
	go s.dispatch()

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s
}

// Schedule 在delay之后尝试删除一条消息，立即返回。
// 重复调度同一条消息会产生两次删除尝试，第二次会无害地失败。
func (s *Scheduler) Schedule(chatID int64, messageID int, delay time.Duration) {
	d := deletion{
		chatID:    chatID,
		messageID: messageID,
		fireAt:    time.Now().Add(delay),
	}

	s.mu.Lock()
	heap.Push(&s.queue, d)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Stop 停止调度器。未到期的条目直接丢弃，与尽力而为的删除语义一致。
func (s *Scheduler) Stop() {
	close(s.stop)
	s.wg.Wait()
}

func (s *Scheduler) dispatch() {
	defer s.wg.Done()
	defer close(s.jobs)

	for {
		s.mu.Lock()
		if s.queue.Len() == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.stop:
				return
			}
		}

		next := s.queue[0]
		now := time.Now()

		if next.fireAt.After(now) {
			s.mu.Unlock()
			timer := time.NewTimer(next.fireAt.Sub(now))
			select {
			case <-timer.C:
			case <-s.wake:
				timer.Stop()
			case <-s.stop:
				timer.Stop()
				return
			}
			continue
		}

		d := heap.Pop(&s.queue).(deletion)
		s.mu.Unlock()

		select {
		case s.jobs <- d:
		case <-s.stop:
			return
		}
	}
}

func (s *Scheduler) worker() {
	defer s.wg.Done()

	for d := range s.jobs {
		if err := s.deleter.DeleteMessage(d.chatID, d.messageID); err != nil {
			monitoring.MessageDeleteCounter.WithLabelValues("failed").Inc()
			logger.Log.Warn("scheduled delete failed",
				zap.Int64("chat_id", d.chatID),
				zap.Int("message_id", d.messageID),
				zap.Error(err))
			continue
		}
		monitoring.MessageDeleteCounter.WithLabelValues("ok").Inc()
	}
}
