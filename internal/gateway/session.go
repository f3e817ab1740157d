package gateway

type SessionStatus string
type PaymentState string

const (
	SessionStatusOpen     SessionStatus = "open"
	SessionStatusComplete SessionStatus = "complete"

	PaymentStateUnpaid PaymentState = "unpaid"
	PaymentStatePaid   PaymentState = "paid"
)

// SessionMetadata - метаданные, которые мы прикрепляем к сессии при
// редиректе на оплату и читаем обратно при провижининге.
type SessionMetadata struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Country   string `json:"country"`
	Password  string `json:"password"`
	Plan      string `json:"plan"`
	Currency  string `json:"currency"`
}

// CheckoutSession - сессия оплаты, принадлежит шлюзу и read-only для
// нас. После complete/paid неизменяема: единственный источник правды
// про "платеж прошел".
type CheckoutSession struct {
	ID            string          `json:"id"`
	Status        SessionStatus   `json:"status"`
	PaymentStatus PaymentState    `json:"payment_status"`
	AmountMinor   int64           `json:"amount_minor"`
	RedirectURL   string          `json:"redirect_url,omitempty"`
	Metadata      SessionMetadata `json:"metadata"`
}

// CreateSessionParams - параметры создания checkout-сессии.
type CreateSessionParams struct {
	AmountMinor int64           `json:"amount_minor"`
	SuccessURL  string          `json:"success_url"`
	CancelURL   string          `json:"cancel_url"`
	Metadata    SessionMetadata `json:"metadata"`
}
