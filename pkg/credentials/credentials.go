// Package credentials resolves provider API keys from the environment and
// from dotenv files.
package credentials

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFile is the dotenv file name searched in the candidate directories.
const EnvFile = ".env"

// Spec names a provider and the variables that may hold its key, in lookup
// order.
type Spec struct {
	Provider string
	EnvKeys  []string
}

// Credential is a resolved API key.
type Credential struct {
	Provider string
	APIKey   string
	Source   string // "env:NAME" or "file:PATH#NAME"
}

// String hides the key.
func (c Credential) String() string {
	return c.Provider + " (" + c.Source + ")"
}

// Resolver looks keys up in the process environment first and then in the
// dotenv files, in order. Empty values count as absent.
type Resolver struct {
	Getenv func(string) string // nil uses os.Getenv
	Files  []string            // dotenv candidates, in order
	Logger *slog.Logger

	parsed map[string]map[string]string
}

// CandidateFiles returns the dotenv paths searched by default: explicit (when
// set), then .env relative to the process, the working directory and the
// home directory. Duplicates are removed.
func CandidateFiles(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	paths = append(paths, EnvFile)
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, EnvFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, EnvFile))
	}

	seen := make(map[string]struct{}, len(paths))
	out := paths[:0]
	for _, p := range paths {
		key := p
		if abs, err := filepath.Abs(p); err == nil {
			key = abs
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Resolve returns the credentials found for specs, preserving spec order.
// Providers without a key are left out.
func (r *Resolver) Resolve(specs ...Spec) []Credential {
	var out []Credential
	for _, s := range specs {
		c, ok := r.Lookup(s)
		if !ok {
			r.logger().Info("credentials: no key", "provider", s.Provider, "env", strings.Join(s.EnvKeys, ","))
			continue
		}
		r.logger().Info("credentials: key loaded", "provider", c.Provider, "source", c.Source)
		out = append(out, c)
	}
	return out
}

// Lookup resolves one provider.
func (r *Resolver) Lookup(s Spec) (Credential, bool) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	for _, k := range s.EnvKeys {
		if v := strings.TrimSpace(getenv(k)); v != "" {
			return Credential{Provider: s.Provider, APIKey: v, Source: "env:" + k}, true
		}
	}

	for _, k := range s.EnvKeys {
		for _, path := range r.Files {
			if v := strings.TrimSpace(r.file(path)[k]); v != "" {
				return Credential{Provider: s.Provider, APIKey: v, Source: "file:" + path + "#" + k}, true
			}
		}
	}

	return Credential{}, false
}

// file parses path once. Missing or unreadable files yield an empty map.
func (r *Resolver) file(path string) map[string]string {
	if r.parsed == nil {
		r.parsed = make(map[string]map[string]string)
	}
	if m, ok := r.parsed[path]; ok {
		return m
	}

	m, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger().Debug("credentials: skip env file", "path", path, "error", err)
		}
		m = map[string]string{}
	}
	r.parsed[path] = m
	return m
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
