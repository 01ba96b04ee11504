package security_test

import (
	"github.com/stretchr/testify/mock"
)

// MockLogger implements security.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

func newQuietLogger() *MockLogger {
	logger := &MockLogger{}
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()
	return logger
}
