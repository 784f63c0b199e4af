// Package engine is the composition root of the assistant. It reads the
// settings file, resolves provider credentials, builds the provider chain and
// hands out Sessions. A Session runs one turn at a time against a
// configuration store: prompt, provider chain, reply parser. Frontends (the
// chat TUI, the one-shot CLI, the MCP server) observe activity through an
// EventBus and never talk to providers directly.
package engine
