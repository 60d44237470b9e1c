// Package featureflags evaluates feature toggles configured as a key=value
// list.
package featureflags

import (
	"hash/fnv"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Flags understood by the API.
const (
	Comments  = "comments"
	Reactions = "reactions"
	PageViews = "page_views"
)

// flag is one parsed setting. percent is the share of subjects that see
// the feature: 0 is off, 100 is on for everyone, anonymous callers included.
type flag struct {
	raw     string
	percent int
}

// Manager evaluates flags such as "comments=on,reactions=25%,page_views=off".
// Accepted values are on/true/1, off/false/0 and N%. Anything else, and
// any flag that is not listed, evaluates to off. A nil Manager reports
// every flag off.
type Manager struct {
	flags map[string]flag
}

// NewManager parses a comma-separated flag list. Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	m := &Manager{flags: make(map[string]flag)}
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key, value = normalize(key), normalize(value)
		if !ok || key == "" || value == "" {
			continue
		}
		m.flags[key] = flag{raw: value, percent: parsePercent(value)}
	}
	return m
}

func parsePercent(value string) int {
	switch value {
	case "on", "true", "1":
		return 100
	case "off", "false", "0":
		return 0
	}
	digits, ok := strings.CutSuffix(value, "%")
	if !ok {
		return 0
	}
	pct, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return min(max(pct, 0), 100)
}

// Enabled reports whether name is on for subject, usually the caller's
// email. Partial rollouts bucket subjects deterministically and never
// include an empty subject.
func (m *Manager) Enabled(name, subject string) bool {
	if m == nil {
		return false
	}
	f, ok := m.flags[normalize(name)]
	switch {
	case !ok || f.percent == 0:
		return false
	case f.percent == 100:
		return true
	}
	subject = normalize(subject)
	return subject != "" && rolloutBucket(name, subject) < f.percent
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	if m == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(m.flags))
}

// Raw returns the configured values as written, after normalization.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string)
	if m == nil {
		return out
	}
	for name, f := range m.flags {
		out[name] = f.raw
	}
	return out
}

// Snapshot evaluates every configured flag for one subject.
func (m *Manager) Snapshot(subject string) map[string]bool {
	out := make(map[string]bool)
	for _, name := range m.Names() {
		out[name] = m.Enabled(name, subject)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + subject))
	return int(h.Sum32() % 100)
}
