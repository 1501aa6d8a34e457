package swap

import "errors"

// ── 换班模块业务错误 ──

var (
	ErrNotFound         = errors.New("换班申请不存在")
	ErrInvalidState     = errors.New("换班申请已处理")
	ErrUnauthorized     = errors.New("无权处理该换班申请")
	ErrPersistence      = errors.New("换班申请保存失败")
	ErrInFlight         = errors.New("换班申请正在处理中")
	ErrInvalidRequest   = errors.New("换班申请数据无效")
	ErrInvalidFilter    = errors.New("无效的状态筛选")
	ErrShareUnavailable = errors.New("系统分享不可用")
)

// ErrorKind 将错误归类为稳定的短标签（用于指标与日志）
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInFlight):
		return "in_flight"
	case errors.Is(err, ErrPersistence):
		return "persistence"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	}
	return "other"
}
