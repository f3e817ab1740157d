package dto

// ProvisioningResult - результат Provision. Created=true, если хотя бы
// одна запись была реально создана этим вызовом.
type ProvisioningResult struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	Created   bool   `json:"created"`
	Email     string `json:"email"`
}

// VerifyPaymentRequest - входной запрос на подтверждение оплаты.
type VerifyPaymentRequest struct {
	SessionID string `json:"session_id"`
}
