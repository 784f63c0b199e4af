package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMCPCmd_IsRegistered(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "mcp" {
			found = true
			break
		}
	}
	assert.True(t, found, "mcp command should be registered on rootCmd")
}

func TestMCPServeCmd_IsRegistered(t *testing.T) {
	found := false
	for _, cmd := range mcpCmd.Commands() {
		if cmd.Use == "serve" {
			found = true
			break
		}
	}
	assert.True(t, found, "serve command should be registered on mcpCmd")
}

func TestMCPServeCmd_RejectsArgs(t *testing.T) {
	err := mcpServeCmd.Args(mcpServeCmd, []string{"extra"})
	assert.Error(t, err)
}

func TestMCPInstructions_NameTools(t *testing.T) {
	for _, name := range []string{"get_config", "propose_changes", "apply_changes"} {
		assert.Contains(t, mcpInstructions, name)
	}
}
