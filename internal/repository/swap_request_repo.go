package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"shiftswap/internal/model"
	pkgerrors "shiftswap/pkg/errors"
)

// SwapRequestRepository 换班申请数据访问接口
type SwapRequestRepository interface {
	Create(ctx context.Context, r *model.SwapRequest) error
	GetByID(ctx context.Context, id string) (*model.SwapRequest, error)
	// List 全部申请，按创建时间倒序
	List(ctx context.Context) ([]model.SwapRequest, error)
	// Decide 条件更新：仅当申请仍为 pending 且版本号匹配时写入新状态
	Decide(ctx context.Context, r *model.SwapRequest, status, decidedBy string) error
}

type swapRequestRepo struct {
	db *gorm.DB
}

// NewSwapRequestRepo 创建 SwapRequestRepository 实例
func NewSwapRequestRepo(db *gorm.DB) SwapRequestRepository {
	return &swapRequestRepo{db: db}
}

func (r *swapRequestRepo) Create(ctx context.Context, req *model.SwapRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *swapRequestRepo) GetByID(ctx context.Context, id string) (*model.SwapRequest, error) {
	var req model.SwapRequest
	err := r.db.WithContext(ctx).
		Where("swap_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *swapRequestRepo) List(ctx context.Context) ([]model.SwapRequest, error) {
	var list []model.SwapRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC, swap_request_id").
		Find(&list).Error
	return list, err
}

func (r *swapRequestRepo) Decide(ctx context.Context, req *model.SwapRequest, status, decidedBy string) error {
	oldVersion := req.Version
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(req).
		Where("swap_request_id = ? AND status = ? AND version = ?", req.SwapRequestID, "pending", oldVersion).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": decidedBy,
			"decided_at": now,
			"updated_by": decidedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if req.Status != "pending" {
			return pkgerrors.ErrStateConflict
		}
		return pkgerrors.ErrOptimisticLock
	}
	req.Status = status
	req.DecidedBy = &decidedBy
	req.DecidedAt = &now
	req.UpdatedBy = &decidedBy
	req.Version = oldVersion + 1
	return nil
}
