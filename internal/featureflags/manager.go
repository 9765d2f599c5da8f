// Package featureflags implements a small in-process feature flag store
// with boolean and percentage rollout flags, seeded from configuration.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"sync"
)

// Flag names used across the application.
const (
	// ViewDedup gates visitor-level view deduplication.
	ViewDedup = "view_dedup"
	// StrictCommentPolicy rejects comments on posts that are not published.
	StrictCommentPolicy = "strict_comment_policy"
)

// Manager stores flags and answers rollout decisions. Safe for
// concurrent use.
type Manager struct {
	mu    sync.RWMutex
	flags map[string]flag
}

type flag struct {
	enabled bool
	// percent is the rollout percentage [0,100] for gradual rollouts.
	// 100 means fully on for every subject when enabled.
	percent int
}

// NewManager returns an empty flag manager.
func NewManager() *Manager {
	return &Manager{flags: make(map[string]flag)}
}

// NewManagerFromSpec parses a comma-separated flag spec such as
// "view_dedup=true,comments_on_unpublished=25%" and returns a manager
// seeded with those flags. Malformed entries are skipped with an error
// describing the first problem encountered.
func NewManagerFromSpec(spec string) (*Manager, error) {
	m := NewManager()
	var firstErr error

	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			// Bare flag name means enabled.
			m.Set(entry, true)
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)

		if strings.HasSuffix(value, "%") {
			pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
			if err != nil || pct < 0 || pct > 100 {
				if firstErr == nil {
					firstErr = fmt.Errorf("invalid percentage for flag %q: %q", name, value)
				}
				continue
			}
			m.SetPercent(name, pct)
			continue
		}

		enabled, err := strconv.ParseBool(value)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("invalid value for flag %q: %q", name, value)
			}
			continue
		}
		m.Set(name, enabled)
	}

	return m, firstErr
}

// Set enables or disables a flag globally.
func (m *Manager) Set(name string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[name] = flag{enabled: enabled, percent: 100}
}

// SetDefault sets a flag only if it was not already configured, so
// operator-supplied values win over built-in defaults.
func (m *Manager) SetDefault(name string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flags[name]; !ok {
		m.flags[name] = flag{enabled: enabled, percent: 100}
	}
}

// SetPercent enables a flag for the given percentage of subjects.
func (m *Manager) SetPercent(name string, percent int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[name] = flag{enabled: percent > 0, percent: percent}
}

// Enabled reports whether a flag is globally on. Unknown flags are off.
func (m *Manager) Enabled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.flags[name]
	return ok && f.enabled && f.percent >= 100
}

// EnabledFor reports whether a flag is on for a specific subject,
// honoring percentage rollouts. The same subject always gets the same
// answer for a given flag and percentage.
func (m *Manager) EnabledFor(name, subject string) bool {
	m.mu.RLock()
	f, ok := m.flags[name]
	m.mu.RUnlock()

	if !ok || !f.enabled {
		return false
	}
	if f.percent >= 100 {
		return true
	}

	h := fnv.New32a()
	h.Write([]byte(name))
	h.Write([]byte(":"))
	h.Write([]byte(subject))
	return int(h.Sum32()%100) < f.percent
}

// Snapshot returns the current flag states for diagnostics.
func (m *Manager) Snapshot() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.flags))
	for name, f := range m.flags {
		if !f.enabled {
			out[name] = 0
			continue
		}
		out[name] = f.percent
	}
	return out
}
