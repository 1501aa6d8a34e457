package errors

import "errors"

// ── 持久层通用错误 ──

var (
	// ErrOptimisticLock 乐观锁冲突：版本号不匹配，记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
	// ErrStateConflict 条件更新未命中：记录已离开预期状态
	ErrStateConflict = errors.New("记录状态已变化，无法执行该操作")
)

// IsConflict 是否为并发冲突类错误
func IsConflict(err error) bool {
	return errors.Is(err, ErrOptimisticLock) || errors.Is(err, ErrStateConflict)
}
