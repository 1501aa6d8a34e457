// Package swap 换班申请核心逻辑：状态机、可见性/授权规则、筛选分组与分享文本。
//
// 除 Coordinator 外，本包中的函数均为同步、无副作用的纯计算，可重复调用。
package swap

import (
	"fmt"
	"time"
)

// Status 换班申请状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
)

// Valid 是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDeclined:
		return true
	}
	return false
}

// IsTerminal approved / declined 均为终态
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusDeclined
}

// Role 查看者角色
type Role string

const (
	RoleUser       Role = "user"
	RoleTeamLeader Role = "teamleader"
	RoleAdmin      Role = "admin"
)

// ParseRole 解析角色字符串
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleUser, RoleTeamLeader, RoleAdmin:
		return r, true
	}
	return "", false
}

// IsPrivileged admin 与 teamleader 看到全量视图
func (r Role) IsPrivileged() bool {
	return r == RoleAdmin || r == RoleTeamLeader
}

// Party 申请中的一方
type Party struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// Shift 班次描述快照，不指向排班表中的实际班次
type Shift struct {
	Date      string `json:"date"`
	TimeRange string `json:"time_range"`
	ShiftType string `json:"shift_type"`
}

// SwapRequest 换班申请（值类型，变更时整体替换）
type SwapRequest struct {
	ID           string    `json:"id"`
	Requester    Party     `json:"requester"`
	Counterparty Party     `json:"counterparty"`
	GivenShift   Shift     `json:"given_shift"`
	TakenShift   Shift     `json:"taken_shift"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate 校验数据模型不变量
func (r SwapRequest) Validate() error {
	if r.Requester.UserID == "" || r.Counterparty.UserID == "" {
		return fmt.Errorf("%w: 申请双方不能为空", ErrInvalidRequest)
	}
	if r.Requester.UserID == r.Counterparty.UserID {
		return fmt.Errorf("%w: 申请人与对方不能为同一人", ErrInvalidRequest)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("%w: 未知状态 %q", ErrInvalidRequest, r.Status)
	}
	return nil
}

// Viewer 当前操作者身份（由认证上下文显式传入）
type Viewer struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

// Filter 状态筛选
type Filter string

const (
	FilterAll      Filter = "all"
	FilterPending  Filter = "pending"
	FilterApproved Filter = "approved"
	FilterDeclined Filter = "declined"
)

// ParseFilter 解析筛选参数，空串视为 all
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterPending, FilterApproved, FilterDeclined:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
}

// Matches 状态是否命中筛选
func (f Filter) Matches(s Status) bool {
	if f == FilterAll {
		return true
	}
	return Status(f) == s
}
