package network

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockDialer struct {
	mock.Mock
}

func (m *MockDialer) Scheme() string {
	return m.Called().String(0)
}

func (m *MockDialer) Dial(ctx context.Context, peer Peer, o ...DialOpt) (io.ReadWriteCloser, error) {
	args := m.Called(ctx, peer)
	rwc, _ := args.Get(0).(io.ReadWriteCloser)
	return rwc, args.Error(1)
}

type MockNode struct {
	MockDialer
}

func (m *MockNode) Serve(ctx context.Context, onConnect func(peer Peer, r io.ReadWriteCloser) error) error {
	return m.Called(ctx, onConnect).Error(0)
}
