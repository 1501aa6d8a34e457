package model

import (
	"time"

	"shiftswap/internal/swap"
)

// SwapRequest 换班申请表 对应 swap_requests
type SwapRequest struct {
	SwapRequestID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	RequesterID      string     `gorm:"type:uuid;not null"                             json:"requester_id"`
	RequesterName    string     `gorm:"type:varchar(100);not null;default:''"          json:"requester_name"`
	CounterpartyID   string     `gorm:"type:uuid;not null"                             json:"counterparty_id"`
	CounterpartyName string     `gorm:"type:varchar(100);not null;default:''"          json:"counterparty_name"`
	GivenShiftDate   string     `gorm:"type:varchar(32);not null;default:''"           json:"given_shift_date"`
	GivenShiftTime   string     `gorm:"type:varchar(32);not null;default:''"           json:"given_shift_time"`
	GivenShiftType   string     `gorm:"type:varchar(50);not null;default:''"           json:"given_shift_type"`
	TakenShiftDate   string     `gorm:"type:varchar(32);not null;default:''"           json:"taken_shift_date"`
	TakenShiftTime   string     `gorm:"type:varchar(32);not null;default:''"           json:"taken_shift_time"`
	TakenShiftType   string     `gorm:"type:varchar(50);not null;default:''"           json:"taken_shift_type"`
	Status           string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | declined
	DecidedBy        *string    `gorm:"type:uuid"                                      json:"decided_by,omitempty"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (SwapRequest) TableName() string { return "swap_requests" }

// ToDomain 转换为领域对象
func (m *SwapRequest) ToDomain() swap.SwapRequest {
	return swap.SwapRequest{
		ID:           m.SwapRequestID,
		Requester:    swap.Party{UserID: m.RequesterID, Name: m.RequesterName},
		Counterparty: swap.Party{UserID: m.CounterpartyID, Name: m.CounterpartyName},
		GivenShift:   swap.Shift{Date: m.GivenShiftDate, TimeRange: m.GivenShiftTime, ShiftType: m.GivenShiftType},
		TakenShift:   swap.Shift{Date: m.TakenShiftDate, TimeRange: m.TakenShiftTime, ShiftType: m.TakenShiftType},
		Status:       swap.Status(m.Status),
		CreatedAt:    m.CreatedAt,
	}
}

// SwapRequestFromDomain 由领域对象构建表记录
func SwapRequestFromDomain(r swap.SwapRequest) *SwapRequest {
	return &SwapRequest{
		SwapRequestID:    r.ID,
		RequesterID:      r.Requester.UserID,
		RequesterName:    r.Requester.Name,
		CounterpartyID:   r.Counterparty.UserID,
		CounterpartyName: r.Counterparty.Name,
		GivenShiftDate:   r.GivenShift.Date,
		GivenShiftTime:   r.GivenShift.TimeRange,
		GivenShiftType:   r.GivenShift.ShiftType,
		TakenShiftDate:   r.TakenShift.Date,
		TakenShiftTime:   r.TakenShift.TimeRange,
		TakenShiftType:   r.TakenShift.ShiftType,
		Status:           string(r.Status),
	}
}
