package levertest

import (
	"time"

	lever "github.com/allbin/go-lever"
	"github.com/stretchr/testify/mock"
)

// MockTransport is a testify mock of lever.Transport.
type MockTransport struct{ mock.Mock }

var _ lever.Transport = (*MockTransport)(nil)

func (m *MockTransport) Open(port string, baudRate int, timeout time.Duration) (lever.Conn, error) {
	args := m.Called(port, baudRate, timeout)
	conn, _ := args.Get(0).(lever.Conn)
	return conn, args.Error(1)
}

func (m *MockTransport) DefaultBaudRate() int {
	return m.Called().Int(0)
}

func (m *MockTransport) DefaultTimeout() time.Duration {
	return m.Called().Get(0).(time.Duration)
}

// MockConn is a testify mock of lever.Conn.
type MockConn struct{ mock.Mock }

var _ lever.Conn = (*MockConn)(nil)

func (m *MockConn) SetForce(grams int) error {
	return m.Called(grams).Error(0)
}

func (m *MockConn) ReadState() (lever.State, error) {
	args := m.Called()
	return args.Get(0).(lever.State), args.Error(1)
}

func (m *MockConn) IsOpen() bool {
	return m.Called().Bool(0)
}

func (m *MockConn) Close() error {
	return m.Called().Error(0)
}
