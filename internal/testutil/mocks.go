// Package testutil provides test doubles and fixtures for the tabs2spaces
// packages.
package testutil

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/stackvity/tabs2spaces/pkg/converter"
)

// MockHooks provides a mock implementation of the converter.Hooks interface.
// Configure expectations using testify/mock methods (e.g., .On("OnFileStatusUpdate", ...).Return(...)).
// mock.Mock serializes calls, so the mock is safe for the concurrent hook calls of the engine.
type MockHooks struct {
	mock.Mock
}

// OnFileDiscovered mocks the OnFileDiscovered method.
func (m *MockHooks) OnFileDiscovered(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// OnFileStatusUpdate mocks the OnFileStatusUpdate method.
func (m *MockHooks) OnFileStatusUpdate(path string, status converter.Status, message string, duration time.Duration) error {
	args := m.Called(path, status, message, duration)
	return args.Error(0)
}

// OnRunComplete mocks the OnRunComplete method.
func (m *MockHooks) OnRunComplete(report converter.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

// MockFileFilter provides a mock implementation of the converter.FileFilter interface.
type MockFileFilter struct {
	mock.Mock
}

// Include mocks the Include method.
func (m *MockFileFilter) Include(absPath string) (bool, error) {
	args := m.Called(absPath)
	include, _ := args.Get(0).(bool)
	return include, args.Error(1)
}

// Reason mocks the Reason method.
func (m *MockFileFilter) Reason() string {
	args := m.Called()
	return args.String(0)
}
