package templateclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDecodesTemplate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/templates/hub", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"hub","kind":"Server","slots":100}`))
	}))
	defer srv.Close()

	c := newWithBase(srv.URL)
	tmpl, err := c.Get(context.Background(), "hub")
	require.NoError(t, err)
	assert.Equal(t, "hub", tmpl.Name)
	assert.EqualValues(t, 100, tmpl.Slots)
}

func TestGetFailsOnNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newWithBase(srv.URL)
	_, err := c.Get(context.Background(), "ghost")
	assert.Error(t, err)
}
