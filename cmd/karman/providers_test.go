package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/germanamz/karman/pkg/credentials"
	"github.com/germanamz/karman/pkg/engine"
)

func TestPrintProviders(t *testing.T) {
	cfg := engine.Config{Providers: []engine.ProviderConfig{
		{Name: "qwen", Kind: "qwen", Model: "qwen-plus"},
		{Name: "deepseek", Kind: "deepseek"},
	}}

	var buf bytes.Buffer
	printProviders(&buf, cfg, []credentials.Credential{
		{Provider: "qwen", APIKey: "sk-secret", Source: "env:DASHSCOPE_API_KEY"},
	})

	assert.Equal(t,
		"1. qwen (qwen, qwen-plus) key from env:DASHSCOPE_API_KEY\n"+
			"2. deepseek (deepseek) no key\n",
		buf.String())
	assert.NotContains(t, buf.String(), "sk-secret")
}

func TestPrintProviders_NoneAvailable(t *testing.T) {
	cfg := engine.Config{Providers: []engine.ProviderConfig{{Name: "qwen", Kind: "qwen"}}}

	var buf bytes.Buffer
	printProviders(&buf, cfg, nil)
	assert.Contains(t, buf.String(), "the assistant is disabled")
}
