package testutil

import (
	"github.com/itohio/rewire"
	"github.com/stretchr/testify/mock"
)

var _ rewire.Duplex[string] = (*MockDuplex[string])(nil)

// MockDuplex records writes through testify's mock and emits whatever the test
// pushes through its embedded Emitter, synchronously.
type MockDuplex[T any] struct {
	mock.Mock
	*rewire.Emitter[T]
}

func NewMockDuplex[T any]() *MockDuplex[T] {
	return &MockDuplex[T]{
		Emitter: rewire.NewEmitter[T](),
	}
}

func (m *MockDuplex[T]) Write(chunk T) error {
	args := m.Called(chunk)
	return args.Error(0)
}

// Written returns the chunks passed to Write in call order.
func (m *MockDuplex[T]) Written() []T {
	var ret []T
	for _, c := range m.Calls {
		if c.Method == "Write" {
			ret = append(ret, c.Arguments.Get(0).(T))
		}
	}
	return ret
}
