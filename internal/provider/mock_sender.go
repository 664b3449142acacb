package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockSender is an in-memory Sender for tests and local wiring.
// Fail, when set, decides per email whether the send returns an error.
type MockSender struct {
	mu   sync.Mutex
	sent []Email
	Fail func(Email) error
}

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(_ context.Context, e Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail != nil {
		if err := m.Fail(e); err != nil {
			return "", err
		}
	}
	m.sent = append(m.sent, e)
	return fmt.Sprintf("mock-%d", len(m.sent)), nil
}

// Sent returns a copy of every successfully sent email, in order.
func (m *MockSender) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.sent))
	copy(out, m.sent)
	return out
}

var _ Sender = (*MockSender)(nil)
