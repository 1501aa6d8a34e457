package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftswap/internal/model"
)

// EmployeeRepository 员工数据访问接口
type EmployeeRepository interface {
	Create(ctx context.Context, e *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	GetByEmployeeNo(ctx context.Context, employeeNo string) (*model.Employee, error)
	GetByIDs(ctx context.Context, ids []string) ([]model.Employee, error)
}

// employeeRepo EmployeeRepository 的 GORM 实现
type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func (r *employeeRepo) Create(ctx context.Context, e *model.Employee) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *employeeRepo) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepo) GetByEmployeeNo(ctx context.Context, employeeNo string) (*model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).
		Where("employee_no = ?", employeeNo).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepo) GetByIDs(ctx context.Context, ids []string) ([]model.Employee, error) {
	var list []model.Employee
	if len(ids) == 0 {
		return list, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&list).Error
	return list, err
}
