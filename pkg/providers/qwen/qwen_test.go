package qwen_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/karman/pkg/providers/qwen"
)

func TestNew_Defaults(t *testing.T) {
	a := qwen.New("sk-qwen", nil)

	assert.Equal(t, "https://dashscope.aliyuncs.com/compatible-mode", a.BaseURL)
	assert.Equal(t, "qwen-turbo", a.Name)
	assert.Equal(t, "sk-qwen", a.Auth.Key)
	assert.Equal(t, []string{"QWEN_API_KEY", "DASHSCOPE_API_KEY"}, qwen.EnvKeys)
}

func TestComplete_CompatibleModePath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/compatible-mode/v1/chat/completions", r.URL.Path)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"pong"}}]}`))
	}))
	defer srv.Close()

	a := qwen.New("sk-qwen", srv.Client())
	a.BaseURL = srv.URL + "/compatible-mode"

	got, err := a.Complete(context.Background(), "", "ping")
	require.NoError(t, err)
	assert.Equal(t, "pong", got.Text)
}
