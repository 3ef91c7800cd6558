package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
)

func TestQueuePushDedupesAcrossGroups(t *testing.T) {
	q := New()
	q.Push(domain.Group{Players: []string{"alice", "bob"}, Queue: "T"})
	q.Push(domain.Group{Players: []string{"bob", "carol"}, Queue: "T"})

	assert.Equal(t, 1, q.Len())
	g, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, []string{"bob", "carol"}, g.Players)

	in := q.InQueueSnapshot()
	assert.Contains(t, in, "alice")
	assert.Contains(t, in, "bob")
	assert.Contains(t, in, "carol")
}

func TestQueuePopFIFO(t *testing.T) {
	q := New()
	q.Push(domain.Group{Players: []string{"a"}, Queue: "T"})
	q.Push(domain.Group{Players: []string{"b"}, Queue: "T"})

	g1, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, g1.Players)

	g2, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, g2.Players)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestQueuePopDoesNotClearInQueue(t *testing.T) {
	q := New()
	q.Push(domain.Group{Players: []string{"alice"}, Queue: "T"})
	_, ok := q.Pop()
	require.True(t, ok)

	in := q.InQueueSnapshot()
	assert.Contains(t, in, "alice", "pop must not clear in_queue membership; matches reference behavior")
}

func TestRegistryGetMissingTemplate(t *testing.T) {
	r := NewRegistry([]string{"survival"})
	_, err := r.Get("creative")
	assert.Error(t, err)

	q, err := r.Get("survival")
	require.NoError(t, err)
	assert.NotNil(t, q)
}
