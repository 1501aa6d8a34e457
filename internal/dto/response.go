package dto

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int              `json:"expires_in"` // Access Token 有效期（秒）
	User         EmployeeResponse `json:"user"`
}

// ── 员工 ──

// EmployeeResponse 员工信息响应（脱敏）
type EmployeeResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	EmployeeNo string `json:"employee_no"`
	Email      string `json:"email"`
	Role       string `json:"role"`
}
