package proxy

// MockController is a test double for Controller interface
type MockController struct {
	name string

	// Function mocks - set these to customize behavior
	StopFunc      func() error
	StartFunc     func() error
	IsRunningFunc func() (bool, error)

	// Call tracking - check these to verify interactions
	StopCalls      int
	StartCalls     int
	IsRunningCalls int
}

// NewMockController creates a new MockController with default no-op implementations
func NewMockController(name string) *MockController {
	return &MockController{name: name}
}

// Name returns the proxy name
func (m *MockController) Name() string {
	return m.name
}

// Stop records the call and invokes the mock function if set
func (m *MockController) Stop() error {
	m.StopCalls++
	if m.StopFunc != nil {
		return m.StopFunc()
	}
	return nil
}

// Start records the call and invokes the mock function if set
func (m *MockController) Start() error {
	m.StartCalls++
	if m.StartFunc != nil {
		return m.StartFunc()
	}
	return nil
}

// IsRunning records the call and invokes the mock function if set
func (m *MockController) IsRunning() (bool, error) {
	m.IsRunningCalls++
	if m.IsRunningFunc != nil {
		return m.IsRunningFunc()
	}
	return true, nil
}

// Reset clears all call tracking
func (m *MockController) Reset() {
	m.StopCalls = 0
	m.StartCalls = 0
	m.IsRunningCalls = 0
}
