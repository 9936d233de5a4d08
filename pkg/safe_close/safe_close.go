// Package safe_close 协调多个后台 goroutine 的统一关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached worker and waits for them
// SafeClose 向所有挂载的 worker 广播关闭信号并等待其退出
type SafeClose struct {
	once    sync.Once
	closeCh chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	err     error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeCh: make(chan struct{})}
}

// Attach runs fn in a goroutine; fn must call done when it returns
// Attach 在 goroutine 中运行 fn，fn 返回前必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	go fn(func() { once.Do(s.wg.Done) }, s.closeCh)
}

// SendCloseSignal closes the signal channel once, recording the first non-nil err
// SendCloseSignal 关闭信号通道（仅一次），记录第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if s.err == nil && err != nil {
		s.err = err
	}
	s.mu.Unlock()
	s.once.Do(func() { close(s.closeCh) })
}

// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeCh
}

// WaitClosed waits for all attached workers and returns the recorded error
// WaitClosed 等待所有 worker 退出并返回记录的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
