package email

import "sync"

// MockProvider используется для тестов и локальной разработки.
type MockProvider struct {
	mu   sync.Mutex
	Sent []*Email
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Send(email *Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, email)
	return nil
}

func (m *MockProvider) SendVerificationCode(to string, code string) error {
	return m.Send(&Email{
		To:      []string{to},
		Subject: "Your verification code",
		Body:    code,
	})
}

func (m *MockProvider) Close() error { return nil }
