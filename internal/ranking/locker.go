package ranking

import "sync"

// Locker 按文章 ID 加锁,不同文章之间互不阻塞。
// 没有持有者的锁会被回收,map 不会无限增长。
type Locker struct {
	mu    sync.Mutex
	locks map[uint]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[uint]*entry)}
}

// Lock 获取 id 对应的锁,返回解锁函数
func (l *Locker) Lock(id uint) func() {
	l.mu.Lock()
	e, ok := l.locks[id]
	if !ok {
		e = &entry{}
		l.locks[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// Len 当前被持有或等待中的锁数量
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
