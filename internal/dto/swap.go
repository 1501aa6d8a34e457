package dto

import (
	"time"

	"shiftswap/internal/swap"
)

// ── 换班申请 DTO ──

// ShiftPayload 班次描述
type ShiftPayload struct {
	Date      string `json:"date"       binding:"max=32"`
	TimeRange string `json:"time_range" binding:"max=32"`
	ShiftType string `json:"shift_type" binding:"max=50"`
}

// CreateSwapRequest 发起换班申请
type CreateSwapRequest struct {
	CounterpartyID string       `json:"counterparty_id" binding:"required,uuid"`
	GivenShift     ShiftPayload `json:"given_shift"`
	TakenShift     ShiftPayload `json:"taken_shift"`
}

// SwapListQuery 列表查询参数
type SwapListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=all pending approved declined"`
}

// ExportQuery 导出查询参数
type ExportQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=all pending approved declined"`
}

// ── 响应 ──

// PartyResponse 申请参与方
type PartyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SwapRequestResponse 换班申请
type SwapRequestResponse struct {
	ID           string        `json:"id"`
	Requester    PartyResponse `json:"requester"`
	Counterparty PartyResponse `json:"counterparty"`
	GivenShift   ShiftPayload  `json:"given_shift"`
	TakenShift   ShiftPayload  `json:"taken_shift"`
	Status       string        `json:"status"`
	CreatedAt    string        `json:"created_at"`
}

// SwapItemResponse 视图中的一条申请
type SwapItemResponse struct {
	SwapRequestResponse
	Actionable bool `json:"actionable"`
}

// SwapSectionResponse 视图分区
type SwapSectionResponse struct {
	Kind         string             `json:"kind"`
	Title        string             `json:"title"`
	Count        int                `json:"count"`
	Items        []SwapItemResponse `json:"items"`
	EmptyMessage string             `json:"empty_message,omitempty"`
}

// SwapViewResponse 列表视图
type SwapViewResponse struct {
	Filter   string                `json:"filter"`
	Role     string                `json:"role"`
	Sections []SwapSectionResponse `json:"sections"`
}

// ShareResponse 分享内容
type ShareResponse struct {
	Title       string `json:"title"`
	Text        string `json:"text"`
	FallbackURL string `json:"fallback_url"`
}

// ── 转换 ──

// NewSwapRequestResponse 领域对象 → 响应
func NewSwapRequestResponse(r swap.SwapRequest) SwapRequestResponse {
	return SwapRequestResponse{
		ID:           r.ID,
		Requester:    PartyResponse{ID: r.Requester.UserID, Name: r.Requester.Name},
		Counterparty: PartyResponse{ID: r.Counterparty.UserID, Name: r.Counterparty.Name},
		GivenShift:   newShiftPayload(r.GivenShift),
		TakenShift:   newShiftPayload(r.TakenShift),
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewSwapViewResponse 视图 → 响应；空分区的 items 输出为 []
func NewSwapViewResponse(v swap.View) SwapViewResponse {
	out := SwapViewResponse{
		Filter:   string(v.Filter),
		Role:     string(v.Role),
		Sections: make([]SwapSectionResponse, 0, len(v.Sections)),
	}
	for _, s := range v.Sections {
		items := make([]SwapItemResponse, 0, len(s.Items))
		for _, it := range s.Items {
			items = append(items, SwapItemResponse{
				SwapRequestResponse: NewSwapRequestResponse(it.Request),
				Actionable:          it.Actionable,
			})
		}
		sec := SwapSectionResponse{
			Kind:  string(s.Kind),
			Title: s.Title,
			Count: s.Count,
			Items: items,
		}
		if len(items) == 0 {
			sec.EmptyMessage = s.EmptyMessage
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}

func newShiftPayload(s swap.Shift) ShiftPayload {
	return ShiftPayload{Date: s.Date, TimeRange: s.TimeRange, ShiftType: s.ShiftType}
}

// ToShift 请求 → 领域对象
func (p ShiftPayload) ToShift() swap.Shift {
	return swap.Shift{Date: p.Date, TimeRange: p.TimeRange, ShiftType: p.ShiftType}
}
