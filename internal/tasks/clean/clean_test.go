package clean

import (
	"context"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epsilon-fr/epsilon-autoscaler/apis/v1alpha1"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/provider"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/store"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/testgw"
)

func TestRunRemovesLatchedInstances(t *testing.T) {
	gw := testgw.New()
	st := store.New()
	st.Put(v1alpha1.EpsilonInstance{
		ObjectMeta: metav1.ObjectMeta{Name: "hub-a"},
		Status:     v1alpha1.InstanceStatus{Kind: v1alpha1.Server, State: v1alpha1.Stopping, Close: true},
	})
	st.Put(v1alpha1.EpsilonInstance{
		ObjectMeta: metav1.ObjectMeta{Name: "proxy-a"},
		Status:     v1alpha1.InstanceStatus{Kind: v1alpha1.Proxy, State: v1alpha1.Stopping, Close: true},
	})
	st.Put(v1alpha1.EpsilonInstance{
		ObjectMeta: metav1.ObjectMeta{Name: "hub-b"},
		Status:     v1alpha1.InstanceStatus{Kind: v1alpha1.Server, State: v1alpha1.Running, Close: false},
	})

	p := provider.New("default", gw, st)
	task := New(p)

	require.NoError(t, task.Run(context.Background()))
	assert.ElementsMatch(t, []string{"hub-a", "proxy-a"}, gw.Removed)
}

func TestRunIsNoopWhenNothingLatched(t *testing.T) {
	gw := testgw.New()
	st := store.New()
	st.Put(v1alpha1.EpsilonInstance{
		ObjectMeta: metav1.ObjectMeta{Name: "hub-a"},
		Status:     v1alpha1.InstanceStatus{Kind: v1alpha1.Server, State: v1alpha1.Running},
	})
	p := provider.New("default", gw, st)
	task := New(p)

	require.NoError(t, task.Run(context.Background()))
	assert.Empty(t, gw.Removed)
}
