package probe

import (
	"bufio"
	"context"
	"io"
	"net"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarIntRoundTrip(t *testing.T) {
	for _, v := range []int32{0, 1, 127, 128, 300, 1 << 20} {
		buf := appendVarInt(nil, v)
		got, err := readVarInt(bufio.NewReader(byteReader(buf)))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

type byteReaderT struct {
	data []byte
	pos  int
}

func byteReader(b []byte) *byteReaderT { return &byteReaderT{data: b} }

func (b *byteReaderT) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}

func TestGetAgainstFakeStatusServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 4096)
		conn.Read(buf) // drain handshake + status request; response below is unconditional

		payload := []byte(`{"players":{"online":3,"max":20}}`)
		var out []byte
		out = appendVarInt(out, 0)
		out = appendVarInt(out, int32(len(payload)))
		var packet []byte
		packet = appendVarInt(packet, int32(len(out)+len(payload)))
		packet = append(packet, out...)
		packet = append(packet, payload...)
		conn.Write(packet)
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	status, err := Get(context.Background(), host, port)
	require.NoError(t, err)
	assert.Equal(t, 3, status.Online)
	assert.Equal(t, 20, status.Max)
}
