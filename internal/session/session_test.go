package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContext_RejectsDuplicate(t *testing.T) {
	m := NewManager("", 20, 30, 20, nil)
	_, ok := m.CreateContext("s1", nil)
	require.True(t, ok)

	_, ok = m.CreateContext("s1", nil)
	assert.False(t, ok)
}

func TestCodeHistory_BoundedAt20(t *testing.T) {
	m := NewManager("", 20, 30, 20, nil)
	m.CreateContext("s1", nil)

	for i := 0; i < 25; i++ {
		m.AddCodeToContext("s1", "print(1)", "python")
	}

	ctx, ok := m.GetContext("s1")
	require.True(t, ok)
	assert.LessOrEqual(t, len(ctx.CodeHistory), 20)
}

func TestConversationHistory_BoundedAt30(t *testing.T) {
	m := NewManager("", 20, 30, 20, nil)
	m.CreateContext("s1", nil)
	for i := 0; i < 40; i++ {
		m.AddMessageToContext("s1", "user", "hello")
	}
	ctx, _ := m.GetContext("s1")
	assert.LessOrEqual(t, len(ctx.ConversationHistory), 30)
}

func TestExecutionHistory_BoundedAt20(t *testing.T) {
	m := NewManager("", 20, 30, 20, nil)
	m.CreateContext("s1", nil)
	for i := 0; i < 30; i++ {
		m.AddExecutionToContext("s1", "secret_scan", map[string]any{}, map[string]any{"clean": true})
	}
	ctx, _ := m.GetContext("s1")
	assert.LessOrEqual(t, len(ctx.ExecutionHistory), 20)
}

func TestMetadata_MergedNotReplaced(t *testing.T) {
	m := NewManager("", 20, 30, 20, nil)
	m.CreateContext("s1", map[string]any{"owner": "alice"})
	m.UpdateContextMetadata("s1", map[string]any{"team": "core"})

	ctx, _ := m.GetContext("s1")
	assert.Equal(t, "alice", ctx.Metadata["owner"])
	assert.Equal(t, "core", ctx.Metadata["team"])
}

func TestDeleteContext_RemovesPersistedFile(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, 20, 30, 20, nil)
	m.CreateContext("s1", nil)

	path := filepath.Join(dir, "s1.json")
	_, err := os.Stat(path)
	require.NoError(t, err)

	m.DeleteContext("s1")
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestPersistence_TruncatesOpenFileContentOver1024Chars(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir, 20, 30, 20, nil)
	m.CreateContext("s1", nil)

	bigContent := strings.Repeat("x", 5*1024)
	m.AddFileToContext("s1", "big.py", "python", bigContent, true)

	data, err := os.ReadFile(filepath.Join(dir, "s1.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), strings.Repeat("x", 2000))
	assert.Contains(t, string(data), truncationMarker)

	// in-memory content remains full length.
	ctx, ok := m.GetContext("s1")
	require.True(t, ok)
	assert.Len(t, ctx.OpenFiles["big.py"].Content, 5*1024)
}

func TestGetContext_LazyLoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	m1 := NewManager(dir, 20, 30, 20, nil)
	m1.CreateContext("s1", map[string]any{"k": "v"})

	m2 := NewManager(dir, 20, 30, 20, nil)
	ctx, ok := m2.GetContext("s1")
	require.True(t, ok)
	assert.Equal(t, "v", ctx.Metadata["k"])
}
