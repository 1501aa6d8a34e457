package handler

import "shiftswap/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth *AuthHandler
	Swap *SwapHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth: NewAuthHandler(svc.Auth),
		Swap: NewSwapHandler(svc.Swap, svc.Export),
	}
}
