package swap

import (
	"context"
	"sync"
)

// Guard 保证同一申请同一时刻最多只有一个进行中的 approve/decline。
// 已被占用时 Acquire 返回 ErrInFlight；成功时返回的 release 必须被调用一次。
type Guard interface {
	Acquire(ctx context.Context, id string) (release func(), err error)
}

// localGuard 进程内互斥
type localGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalGuard 创建进程内 Guard
func NewLocalGuard() Guard {
	return &localGuard{held: make(map[string]struct{})}
}

func (g *localGuard) Acquire(_ context.Context, id string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[id]; busy {
		return nil, ErrInFlight
	}
	g.held[id] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, id)
			g.mu.Unlock()
		})
	}, nil
}

// chainGuard 依次获取多个 Guard，任一失败则释放已获取的
type chainGuard []Guard

// ChainGuards 组合多个 Guard（如 进程内 + Redis）
func ChainGuards(guards ...Guard) Guard {
	out := make(chainGuard, 0, len(guards))
	for _, g := range guards {
		if g != nil {
			out = append(out, g)
		}
	}
	return out
}

func (c chainGuard) Acquire(ctx context.Context, id string) (func(), error) {
	releases := make([]func(), 0, len(c))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, g := range c {
		release, err := g.Acquire(ctx, id)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}
