package bootstrap

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cnetlab/cnetinit/internal/journal"
	"github.com/cnetlab/cnetinit/internal/ovs"
)

// MockSwitchManager mocks the SwitchManager interface.
type MockSwitchManager struct {
	mock.Mock
}

func (m *MockSwitchManager) Start(ctx context.Context, nested bool) (ovs.Timings, error) {
	args := m.Called(ctx, nested)
	return args.Get(0).(ovs.Timings), args.Error(1)
}

// MockBootJournal mocks the BootJournal interface.
type MockBootJournal struct {
	mock.Mock
}

func (m *MockBootJournal) Record(e journal.Entry) error {
	args := m.Called(e)
	return args.Error(0)
}

func (m *MockBootJournal) SetOutcome(bootID, outcome string, exitCode int) error {
	args := m.Called(bootID, outcome, exitCode)
	return args.Error(0)
}

func (m *MockBootJournal) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockDaemonPinger mocks the DaemonPinger interface.
type MockDaemonPinger struct {
	mock.Mock
}

func (m *MockDaemonPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockDaemonPinger) ServerVersion(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockDaemonPinger) Close() error {
	args := m.Called()
	return args.Error(0)
}
