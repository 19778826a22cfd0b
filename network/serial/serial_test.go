package serial

import (
	"context"
	"testing"
	"time"

	"github.com/itohio/rewire/errors"
	"github.com/itohio/rewire/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarm/serial"
)

func TestConfig(t *testing.T) {
	tests := []struct {
		name    string
		peer    string
		want    *serial.Config
		wantErr error
	}{
		{
			name: "defaults",
			peer: "serial://dev.ttyUSB0",
			want: &serial.Config{Name: "/dev/ttyUSB0", Baud: 115200},
		},
		{
			name: "windows port",
			peer: "serial://COM3?baud=9600",
			want: &serial.Config{Name: "COM3", Baud: 9600},
		},
		{
			name: "all values",
			peer: "serial://dev.ttyACM1?baud=57600&parity=E&stop=2&bits=7&timeout=250ms",
			want: &serial.Config{
				Name:        "/dev/ttyACM1",
				Baud:        57600,
				Parity:      serial.ParityEven,
				StopBits:    serial.Stop2,
				Size:        7,
				ReadTimeout: 250 * time.Millisecond,
			},
		},
		{
			name: "lower case parity, unknown values ignored",
			peer: "serial://dev.ttyS1?parity=o&flow=none",
			want: &serial.Config{Name: "/dev/ttyS1", Baud: DefaultBaud, Parity: serial.ParityOdd},
		},
		{
			name:    "bad stop bits",
			peer:    "serial://dev.ttyUSB0?stop=3",
			wantErr: errors.ErrStopBits,
		},
		{
			name:    "bad parity",
			peer:    "serial://dev.ttyUSB0?parity=X",
			wantErr: errors.ErrBadArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peer, err := network.PeerFromString(tt.peer)
			require.NoError(t, err)

			cfg, err := Config(peer)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestConfig_BadNumbers(t *testing.T) {
	for _, q := range []string{"baud=fast", "baud=-1", "bits=eight", "bits=9", "timeout=soon"} {
		peer, err := network.PeerFromString("serial://dev.ttyUSB0?" + q)
		require.NoError(t, err)
		_, err = Config(peer)
		assert.ErrorIs(t, err, errors.ErrBadArgument, q)
	}
}

func TestNew_NeedsDevice(t *testing.T) {
	peer, err := network.PeerFromString("serial://")
	require.NoError(t, err)
	_, err = New(peer)
	assert.ErrorIs(t, err, errors.ErrBadArgument)
}

func TestNode_DialWrongScheme(t *testing.T) {
	self, err := network.PeerFromString("serial://dev.ttyUSB0")
	require.NoError(t, err)
	n, err := New(self)
	require.NoError(t, err)
	assert.Equal(t, "serial", n.Scheme())

	other, err := network.PeerFromString("tcp://localhost:1")
	require.NoError(t, err)
	_, err = n.Dial(context.Background(), other)
	assert.ErrorIs(t, err, errors.ErrBadArgument)
}
