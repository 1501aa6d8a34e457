package swap

import (
	"fmt"
	"sync"
)

// Store 当前换班申请集合
//
// 单写者：写方法不导出，只由 Coordinator 调用；每次完成的操作只做一次集合级更新。
// Close 之后的写入全部丢弃（视图已销毁）。
//
// 每次本地写入递增 gen 并记入 touched；整体同步时，快照之后本地写入过的申请
// 以本地为准，避免较旧的持久层列表覆盖已提交的结果。
type Store struct {
	mu      sync.RWMutex
	items   []SwapRequest
	index   map[string]int
	closed  bool
	gen     uint64
	synced  uint64            // 最近一次生效的整体同步对应的 gen
	touched map[string]uint64 // 申请 ID → 最后一次本地写入的 gen
}

// NewStore 创建空集合
func NewStore() *Store {
	return &Store{
		index:   make(map[string]int),
		touched: make(map[string]uint64),
	}
}

// Snapshot 返回集合副本，顺序与持久层一致
func (s *Store) Snapshot() []SwapRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SwapRequest, len(s.items))
	copy(out, s.items)
	return out
}

// Get 按 ID 查询
func (s *Store) Get(id string) (SwapRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return SwapRequest{}, false
	}
	return s.items[i], true
}

// Len 集合大小
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Close 标记集合已销毁
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// Closed 是否已销毁
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// generation 当前写入代数；整体同步前记录，用于识别同步期间的本地写入
func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// replaceAll 以 since 代时读取的列表整体替换；重复 ID 只保留第一条。
// since 之后本地写入过的申请保留本地值（列表中没有的插入到最前）；
// 比已生效同步更旧的列表直接丢弃。
func (s *Store) replaceAll(reqs []SwapRequest, since uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || since < s.synced {
		return false
	}

	items := make([]SwapRequest, 0, len(reqs))
	index := make(map[string]int, len(reqs))
	for _, r := range reqs {
		if _, dup := index[r.ID]; dup {
			continue
		}
		if s.touched[r.ID] > since {
			r = s.items[s.index[r.ID]]
		}
		index[r.ID] = len(items)
		items = append(items, r)
	}

	var fresh []SwapRequest
	for _, r := range s.items {
		if _, listed := index[r.ID]; !listed && s.touched[r.ID] > since {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) > 0 {
		items = append(fresh, items...)
		for i, r := range items {
			index[r.ID] = i
		}
	}

	s.items = items
	s.index = index
	s.synced = since
	for id, g := range s.touched {
		if g <= since {
			delete(s.touched, id)
		}
	}
	return true
}

// put 原位替换已有申请；不存在时追加
func (s *Store) put(r SwapRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.touch(r.ID)
	if i, ok := s.index[r.ID]; ok {
		s.items[i] = r
		return true
	}
	s.index[r.ID] = len(s.items)
	s.items = append(s.items, r)
	return true
}

// insert 新申请插入到最前（集合按创建时间倒序）
func (s *Store) insert(r SwapRequest) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, nil
	}
	if _, ok := s.index[r.ID]; ok {
		return false, fmt.Errorf("%w: ID %s 已存在", ErrInvalidRequest, r.ID)
	}
	s.touch(r.ID)
	s.items = append([]SwapRequest{r}, s.items...)
	for i, it := range s.items {
		s.index[it.ID] = i
	}
	return true, nil
}

// touch 调用方需持有写锁
func (s *Store) touch(id string) {
	s.gen++
	s.touched[id] = s.gen
}
