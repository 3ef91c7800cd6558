package eventbus

import (
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
)

func TestSendDeliversToAllSubscribers(t *testing.T) {
	b := New(logr.Discard(), 4)
	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	defer sub1.Close()
	defer sub2.Close()

	evt := domain.Event{Kind: domain.SendToServer, InstanceName: "proxy-abc"}
	b.Send(evt)

	select {
	case got := <-sub1.Events():
		assert.Equal(t, evt, got)
	case <-time.After(time.Second):
		t.Fatal("sub1 did not receive event")
	}
	select {
	case got := <-sub2.Events():
		assert.Equal(t, evt, got)
	case <-time.After(time.Second):
		t.Fatal("sub2 did not receive event")
	}
}

// recordingSink counts logr.Logger.Error calls so tests can assert a drop
// was actually logged, not just silently swallowed.
type recordingSink struct {
	errCount int
}

func (s *recordingSink) Init(logr.RuntimeInfo)                  {}
func (s *recordingSink) Enabled(int) bool                       { return true }
func (s *recordingSink) Info(int, string, ...interface{})       {}
func (s *recordingSink) Error(error, string, ...interface{})    { s.errCount++ }
func (s *recordingSink) WithValues(...interface{}) logr.LogSink { return s }
func (s *recordingSink) WithName(string) logr.LogSink           { return s }

func TestSendLogsErrorForDroppedEvent(t *testing.T) {
	sink := &recordingSink{}
	b := New(logr.New(sink), 1)
	sub := b.Subscribe()
	defer sub.Close()

	evt := domain.Event{Kind: domain.SendToServer, InstanceName: "x"}
	b.Send(evt) // fills the buffer
	b.Send(evt) // dropped, should log

	assert.Equal(t, 1, sink.errCount)
}

func TestSendDoesNotBlockOnLaggedSubscriber(t *testing.T) {
	b := New(logr.Discard(), 1)
	sub := b.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Send(domain.Event{Kind: domain.SendToServer, InstanceName: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a lagged subscriber")
	}
}

func TestCloseUnregistersSubscriber(t *testing.T) {
	b := New(logr.Discard(), 4)
	sub := b.Subscribe()
	require.Equal(t, 1, b.SubscriberCount())
	sub.Close()
	assert.Equal(t, 0, b.SubscriberCount())
	sub.Close() // idempotent
}
