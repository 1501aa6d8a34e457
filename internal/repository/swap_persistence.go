package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shiftswap/internal/model"
	"shiftswap/internal/swap"
	pkgerrors "shiftswap/pkg/errors"
)

// SwapPersistence 基于 GORM 的 swap.Persistence 实现
type SwapPersistence struct {
	repo SwapRequestRepository
}

var _ swap.Persistence = (*SwapPersistence)(nil)

// NewSwapPersistence 创建换班申请持久层适配器
func NewSwapPersistence(repo SwapRequestRepository) *SwapPersistence {
	return &SwapPersistence{repo: repo}
}

// ListRequests 全部申请（按创建时间倒序）
func (p *SwapPersistence) ListRequests(ctx context.Context) ([]swap.SwapRequest, error) {
	rows, err := p.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]swap.SwapRequest, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// UpdateStatus 写入终态。申请已非 pending 或并发冲突时返回 swap.ErrInvalidState。
func (p *SwapPersistence) UpdateStatus(ctx context.Context, id string, status swap.Status, decidedBy string) (swap.SwapRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return swap.SwapRequest{}, swap.ErrNotFound
	}
	row, err := p.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return swap.SwapRequest{}, swap.ErrNotFound
		}
		return swap.SwapRequest{}, err
	}
	if row.Status != string(swap.StatusPending) {
		return swap.SwapRequest{}, fmt.Errorf("%w: 当前状态为 %s", swap.ErrInvalidState, row.Status)
	}

	if err := p.repo.Decide(ctx, row, string(status), decidedBy); err != nil {
		if pkgerrors.IsConflict(err) {
			return swap.SwapRequest{}, fmt.Errorf("%w: %w", swap.ErrInvalidState, err)
		}
		return swap.SwapRequest{}, err
	}
	return row.ToDomain(), nil
}

// CreateRequest 保存新申请；未指定 ID 时生成 UUID
func (p *SwapPersistence) CreateRequest(ctx context.Context, r swap.SwapRequest) (swap.SwapRequest, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	} else if _, err := uuid.Parse(r.ID); err != nil {
		return swap.SwapRequest{}, fmt.Errorf("%w: ID 必须为 UUID", swap.ErrInvalidRequest)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	row := model.SwapRequestFromDomain(r)
	row.CreatedAt = r.CreatedAt
	row.UpdatedAt = r.CreatedAt
	row.CreatedBy = &r.Requester.UserID
	if err := p.repo.Create(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return swap.SwapRequest{}, fmt.Errorf("%w: ID %s 已存在", swap.ErrInvalidRequest, r.ID)
		}
		return swap.SwapRequest{}, err
	}
	return row.ToDomain(), nil
}
