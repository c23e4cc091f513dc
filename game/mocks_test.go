package game

import (
	"github.com/stretchr/testify/mock"
)

// --- Connection ---

type MockConnection struct {
	mock.Mock
}

func (m *MockConnection) Close(reason string) {
	m.Called(reason)
}

func (m *MockConnection) Write(data []byte) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockConnection) Read() ([]byte, error) {
	args := m.Called()
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockConnection) Ping() error {
	args := m.Called()
	return args.Error(0)
}

// --- KeywordSource ---

type MockKeywordSource struct {
	mock.Mock
}

func (m *MockKeywordSource) Next() string {
	args := m.Called()
	return args.String(0)
}

// NewMockKeywords returns a source handing out words in order, once each.
func NewMockKeywords(words ...string) *MockKeywordSource {
	m := &MockKeywordSource{}
	for _, w := range words {
		m.On("Next").Return(w).Once()
	}
	return m
}

// --- AuditRecorder ---

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordChat(username, text string) {
	m.Called(username, text)
}

func (m *MockRecorder) RecordEvent(event string) {
	m.Called(event)
}

// NewMockRecorder accepts any call; tests assert on the calls they care about.
func NewMockRecorder() *MockRecorder {
	m := &MockRecorder{}
	m.On("RecordChat", mock.Anything, mock.Anything).Return().Maybe()
	m.On("RecordEvent", mock.Anything).Return().Maybe()
	return m
}
