package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name, "reader@example.com"), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name, "reader@example.com"), name)
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=abc%")

	assert.True(t, m.Enabled("always", ""))
	assert.False(t, m.Enabled("never", "reader@example.com"))
	assert.False(t, m.Enabled("broken", "reader@example.com"))

	first := m.Enabled("canary", "reader@example.com")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.Enabled("canary", " Reader@Example.com "), "rollout is deterministic per subject")
	}

	assert.False(t, m.Enabled("canary", ""), "partial rollout needs a subject")
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,Comments=on, reactions = 20% ,page_views=off,=on,x= ")

	assert.Equal(t, map[string]string{
		Comments:  "on",
		Reactions: "20%",
		PageViews: "off",
	}, m.Raw())
	assert.Equal(t, []string{Comments, PageViews, Reactions}, m.Names())

	snap := m.Snapshot("")
	assert.Len(t, snap, 3)
	assert.True(t, snap[Comments])
	assert.False(t, snap[PageViews])
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(Comments, "reader@example.com"))
	assert.Empty(t, m.Raw())
	assert.Empty(t, m.Snapshot("reader@example.com"))
}
