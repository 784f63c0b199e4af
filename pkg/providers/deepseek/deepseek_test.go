package deepseek_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/karman/pkg/providers/deepseek"
)

func TestNew_Defaults(t *testing.T) {
	a := deepseek.New("sk-ds", nil)

	assert.Equal(t, "https://api.deepseek.com", a.BaseURL)
	assert.Equal(t, "deepseek-chat", a.Name)
	assert.Equal(t, "sk-ds", a.Auth.Key)
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-ds", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"fallback reply"}}]}`))
	}))
	defer srv.Close()

	a := deepseek.New("sk-ds", srv.Client())
	a.BaseURL = srv.URL

	got, err := a.Complete(context.Background(), "sys", "hello")
	require.NoError(t, err)
	assert.Equal(t, "fallback reply", got.Text)
}
