package swap

import "fmt"

// Action 生命周期操作
type Action string

const (
	ActionApprove Action = "approve"
	ActionDecline Action = "decline"
)

// Target 操作对应的目标状态
func (a Action) Target() (Status, bool) {
	switch a {
	case ActionApprove:
		return StatusApproved, true
	case ActionDecline:
		return StatusDeclined, true
	}
	return "", false
}

// Policy 授权策略
//
// 对方（counterparty）始终可以处理指向自己的申请；
// AdminOverride 开启时，admin / teamleader 可处理任意申请。
type Policy struct {
	AdminOverride bool
}

// DefaultPolicy 默认开启管理员覆盖
func DefaultPolicy() Policy {
	return Policy{AdminOverride: true}
}

// CanDecide 查看者是否有权处理该申请（不考虑状态）
func (p Policy) CanDecide(r SwapRequest, v Viewer) bool {
	if v.UserID != "" && r.Counterparty.UserID == v.UserID {
		return true
	}
	return p.AdminOverride && v.Role.IsPrivileged()
}

// Actionable 申请当前是否可由查看者处理
func (p Policy) Actionable(r SwapRequest, v Viewer) bool {
	return r.Status == StatusPending && p.CanDecide(r, v)
}

// Transition 对单个申请执行状态迁移，返回新值；入参不被修改。
// 校验顺序：状态 → 授权。
func (p Policy) Transition(r SwapRequest, action Action, v Viewer) (SwapRequest, error) {
	target, ok := action.Target()
	if !ok {
		return SwapRequest{}, fmt.Errorf("%w: 未知操作 %q", ErrInvalidRequest, action)
	}
	if r.Status != StatusPending {
		return SwapRequest{}, fmt.Errorf("%w: 当前状态为 %s", ErrInvalidState, r.Status)
	}
	if !p.CanDecide(r, v) {
		return SwapRequest{}, ErrUnauthorized
	}
	r.Status = target
	return r, nil
}

// Decide 在集合中定位申请并执行迁移
func (p Policy) Decide(reqs []SwapRequest, id string, action Action, v Viewer) (SwapRequest, error) {
	for _, r := range reqs {
		if r.ID == id {
			return p.Transition(r, action, v)
		}
	}
	return SwapRequest{}, ErrNotFound
}

// Approve 同意
func (p Policy) Approve(reqs []SwapRequest, id string, v Viewer) (SwapRequest, error) {
	return p.Decide(reqs, id, ActionApprove, v)
}

// Decline 拒绝
func (p Policy) Decline(reqs []SwapRequest, id string, v Viewer) (SwapRequest, error) {
	return p.Decide(reqs, id, ActionDecline, v)
}
