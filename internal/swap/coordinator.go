package swap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Persistence 持久层协作方
//
// UpdateStatus 不保证幂等：调用方在结果不明时不得盲目重试。
// 实现应在申请不存在时返回 ErrNotFound，在申请已非 pending 时返回 ErrInvalidState。
type Persistence interface {
	ListRequests(ctx context.Context) ([]SwapRequest, error)
	UpdateStatus(ctx context.Context, id string, status Status, decidedBy string) (SwapRequest, error)
	CreateRequest(ctx context.Context, r SwapRequest) (SwapRequest, error)
}

// Recorder 处理结果观测（指标）
type Recorder interface {
	ObserveDecision(action Action, err error)
}

// Outcome 一次异步操作的结果
type Outcome struct {
	Request SwapRequest
	Err     error
	// Discarded 持久化已成功，但集合已销毁，结果未写入本地
	Discarded bool
}

// Options Coordinator 配置
type Options struct {
	Policy         Policy
	Guard          Guard
	PersistTimeout time.Duration
	Recorder       Recorder
	Logger         *zap.Logger
}

const defaultPersistTimeout = 10 * time.Second

// Coordinator 申请生命周期的异步执行者，也是 Store 唯一的写入方。
//
// 纯校验与 Guard 获取同步完成；只有持久化调用在后台 goroutine 中进行。
type Coordinator struct {
	store    *Store
	persist  Persistence
	policy   Policy
	guard    Guard
	timeout  time.Duration
	recorder Recorder
	logger   *zap.Logger
	inflight sync.WaitGroup
}

// NewCoordinator 创建 Coordinator
func NewCoordinator(store *Store, persist Persistence, opts Options) *Coordinator {
	if opts.Guard == nil {
		opts.Guard = NewLocalGuard()
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaultPersistTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Coordinator{
		store:    store,
		persist:  persist,
		policy:   opts.Policy,
		guard:    opts.Guard,
		timeout:  opts.PersistTimeout,
		recorder: opts.Recorder,
		logger:   opts.Logger,
	}
}

// Policy 当前授权策略
func (c *Coordinator) Policy() Policy { return c.policy }

// Store 当前集合（只读访问）
func (c *Coordinator) Store() *Store { return c.store }

// Submit 提交 approve/decline，立即返回结果通道（缓冲 1，必定写入一次后关闭）。
func (c *Coordinator) Submit(ctx context.Context, action Action, id string, v Viewer) <-chan Outcome {
	out := make(chan Outcome, 1)
	fail := func(err error) <-chan Outcome {
		c.observe(action, err)
		out <- Outcome{Err: err}
		close(out)
		return out
	}

	if _, err := c.decideLocal(action, id, v); err != nil {
		return fail(err)
	}

	release, err := c.guard.Acquire(ctx, id)
	if err != nil {
		return fail(err)
	}

	// 获取 Guard 期间可能已有其他操作完成，重新校验
	want, err := c.decideLocal(action, id, v)
	if err != nil {
		release()
		return fail(err)
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer close(out)

		o := c.commit(ctx, want, v)
		release()
		c.observe(action, o.Err)
		out <- o
	}()
	return out
}

// Approve 同意申请（阻塞直到完成或 ctx 结束）。
// ctx 结束后操作仍会在后台完成持久化。
func (c *Coordinator) Approve(ctx context.Context, id string, v Viewer) (SwapRequest, error) {
	return await(ctx, c.Submit(ctx, ActionApprove, id, v))
}

// Decline 拒绝申请
func (c *Coordinator) Decline(ctx context.Context, id string, v Viewer) (SwapRequest, error) {
	return await(ctx, c.Submit(ctx, ActionDecline, id, v))
}

func await(ctx context.Context, ch <-chan Outcome) (SwapRequest, error) {
	select {
	case o := <-ch:
		return o.Request, o.Err
	case <-ctx.Done():
		return SwapRequest{}, ctx.Err()
	}
}

func (c *Coordinator) decideLocal(action Action, id string, v Viewer) (SwapRequest, error) {
	r, ok := c.store.Get(id)
	if !ok {
		return SwapRequest{}, ErrNotFound
	}
	return c.policy.Transition(r, action, v)
}

// commit 调用持久层并同步本地集合；失败时集合保持原状
func (c *Coordinator) commit(ctx context.Context, want SwapRequest, v Viewer) Outcome {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	saved, err := c.persist.UpdateStatus(pctx, want.ID, want.Status, v.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidState) {
			// 本地集合已过期，以持久层为准重新同步
			if rerr := c.Refresh(pctx); rerr != nil {
				c.logger.Warn("冲突后同步换班申请失败", zap.String("swap_request_id", want.ID), zap.Error(rerr))
			}
			return Outcome{Err: err}
		}
		c.logger.Error("持久化换班申请状态失败",
			zap.String("swap_request_id", want.ID),
			zap.String("status", string(want.Status)),
			zap.Error(err),
		)
		return Outcome{Err: fmt.Errorf("%w: %w", ErrPersistence, err)}
	}

	if !c.store.put(saved) {
		c.logger.Info("集合已销毁，丢弃处理结果", zap.String("swap_request_id", saved.ID))
		return Outcome{Request: saved, Discarded: true}
	}
	return Outcome{Request: saved}
}

// Create 创建 pending 申请并插入集合
func (c *Coordinator) Create(ctx context.Context, r SwapRequest) (SwapRequest, error) {
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.Status != StatusPending {
		return SwapRequest{}, fmt.Errorf("%w: 新申请必须为 pending", ErrInvalidRequest)
	}
	if err := r.Validate(); err != nil {
		return SwapRequest{}, err
	}
	if r.ID != "" {
		if _, exists := c.store.Get(r.ID); exists {
			return SwapRequest{}, fmt.Errorf("%w: ID %s 已存在", ErrInvalidRequest, r.ID)
		}
	}

	saved, err := c.persist.CreateRequest(ctx, r)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			return SwapRequest{}, err
		}
		c.logger.Error("创建换班申请失败", zap.Error(err))
		return SwapRequest{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if _, err := c.store.insert(saved); err != nil {
		c.logger.Warn("本地集合插入失败，重新同步", zap.String("swap_request_id", saved.ID), zap.Error(err))
		if rerr := c.Refresh(ctx); rerr != nil {
			c.logger.Warn("同步换班申请失败", zap.Error(rerr))
		}
	}
	return saved, nil
}

// Refresh 以持久层为准替换本地集合；同步期间本地已提交的结果不会被覆盖
func (c *Coordinator) Refresh(ctx context.Context) error {
	since := c.store.generation()
	reqs, err := c.persist.ListRequests(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if !c.store.replaceAll(reqs, since) && !c.store.Closed() {
		c.logger.Debug("已有更新的同步结果，丢弃本次列表")
	}
	return nil
}

// RunRefresher 定时同步，直到 ctx 结束
func (c *Coordinator) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil && ctx.Err() == nil {
				c.logger.Warn("定时同步换班申请失败", zap.Error(err))
			}
		}
	}
}

// Wait 等待所有进行中的操作完成
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

func (c *Coordinator) observe(action Action, err error) {
	if c.recorder != nil {
		c.recorder.ObserveDecision(action, err)
	}
}
