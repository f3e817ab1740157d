package email

// Email представляет структуру email сообщения
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет простое email сообщение
	Send(email *Email) error

	// SendVerificationCode отправляет код подтверждения для шага otp
	SendVerificationCode(to string, code string) error

	// Close закрывает соединение с провайдером
	Close() error
}
