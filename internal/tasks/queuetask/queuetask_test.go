package queuetask

import (
	"context"
	"net"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/eventbus"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/gateway"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/provider"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/queue"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/store"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/testgw"
)

func TestRunStartsInstanceWhenQueueNonEmptyAndNoInstances(t *testing.T) {
	gw := testgw.New()
	st := store.New()
	registry := queue.NewRegistry([]string{"survival"})
	q, err := registry.Get("survival")
	require.NoError(t, err)
	q.Push(domain.Group{Players: []string{"alice"}, Queue: "survival"})

	bus := eventbus.New(logr.Discard(), 4)
	task := New(provider.New("default", gw, st), registry, bus)

	require.NoError(t, task.Run(context.Background()))
	assert.Equal(t, []string{"survival"}, gw.Created)
}

// fakeStatusServer binds the fixed Server entry port on loopback and answers
// every connection with a fixed {online, max} status response, mirroring
// the handshake shape the probe package speaks. Binding the real entry
// port (rather than an ephemeral one) is required because QueueTask dials
// gateway.EntryPort(kind) directly, not an injectable address.
func fakeStatusServer(t *testing.T, online, max int) (ip string) {
	t.Helper()
	addr := net.JoinHostPort("127.0.0.1", portString(gateway.EntryPort(v1alpha1.Server)))
	ln, err := net.Listen("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				buf := make([]byte, 4096)
				conn.Read(buf)

				payload := []byte(`{"players":{"online":` + itoa(online) + `,"max":` + itoa(max) + `}}`)
				var inner []byte
				inner = appendVarInt(inner, 0)
				inner = appendVarInt(inner, int32(len(payload)))
				var packet []byte
				packet = appendVarInt(packet, int32(len(inner)+len(payload)))
				packet = append(packet, inner...)
				packet = append(packet, payload...)
				conn.Write(packet)
			}()
		}
	}()

	host, _, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	return host
}

func portString(p int) string {
	return itoa(p)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func appendVarInt(dst []byte, v int32) []byte {
	u := uint32(v)
	for {
		b := byte(u & 0x7F)
		u >>= 7
		if u != 0 {
			dst = append(dst, b|0x80)
		} else {
			dst = append(dst, b)
			return dst
		}
	}
}

func TestRunDispatchesHeadOfLineBlocking(t *testing.T) {
	ip := fakeStatusServer(t, 15, 20) // avail = 5 of 20 slots

	gw := testgw.New()
	st := store.New()
	st.Put(v1alpha1.EpsilonInstance{
		ObjectMeta: metav1.ObjectMeta{Name: "survival-1"},
		Status: v1alpha1.InstanceStatus{
			Kind: v1alpha1.Server, Template: "survival", State: v1alpha1.Running,
			IP: ip, Slots: 20,
		},
	})

	registry := queue.NewRegistry([]string{"survival"})
	q, err := registry.Get("survival")
	require.NoError(t, err)
	q.Push(domain.Group{Players: []string{"a", "b", "c"}, Queue: "survival"})     // 3 players
	q.Push(domain.Group{Players: []string{"d", "e", "f", "g"}, Queue: "survival"}) // 4 players, blocks
	q.Push(domain.Group{Players: []string{"h", "i"}, Queue: "survival"})          // 2 players, behind block

	bus := eventbus.New(logr.Discard(), 4)
	sub := bus.Subscribe()
	defer sub.Close()

	task := New(provider.New("default", gw, st), registry, bus)
	require.NoError(t, task.Run(context.Background()))

	assert.Equal(t, 2, q.Len(), "G2 and G3 remain queued behind the head-of-line block")

	select {
	case ev := <-sub.Events():
		assert.Equal(t, domain.SendToServer, ev.Kind)
		assert.Equal(t, "survival-1", ev.InstanceName)
		assert.Equal(t, []string{"a", "b", "c"}, ev.Group.Players)
	default:
		t.Fatal("expected exactly one SendToServer event for G1")
	}
}
