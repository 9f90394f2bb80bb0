package dependency

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListStore_LoadsBlocklistAndAllowlistFromDisk(t *testing.T) {
	dir := t.TempDir()
	blocklistPath := filepath.Join(dir, "blocklist.txt")
	allowlistPath := filepath.Join(dir, "allowlist.txt")

	require.NoError(t, os.WriteFile(blocklistPath, []byte("# comment\nrequest\n\nleftpad\n"), 0o644))
	require.NoError(t, os.WriteFile(allowlistPath, []byte("django\nrequests\n"), 0o644))

	store := NewListStore(blocklistPath, allowlistPath, nil)
	lists := store.Lists()

	assert.ElementsMatch(t, []string{"request", "leftpad"}, lists.Blocklist)
	assert.ElementsMatch(t, []string{"django", "requests"}, lists.Allowlist)
}

func TestListStore_MissingFilesYieldEmptyLists(t *testing.T) {
	dir := t.TempDir()
	store := NewListStore(filepath.Join(dir, "missing-block.txt"), filepath.Join(dir, "missing-allow.txt"), nil)

	lists := store.Lists()
	assert.Empty(t, lists.Blocklist)
	assert.Empty(t, lists.Allowlist)
}

func TestListStore_ReloadPicksUpFileChanges(t *testing.T) {
	dir := t.TempDir()
	blocklistPath := filepath.Join(dir, "blocklist.txt")
	require.NoError(t, os.WriteFile(blocklistPath, []byte("request\n"), 0o644))

	store := NewListStore(blocklistPath, "", nil)
	assert.ElementsMatch(t, []string{"request"}, store.Lists().Blocklist)

	require.NoError(t, os.WriteFile(blocklistPath, []byte("request\nleftpad\n"), 0o644))
	store.Reload()

	assert.ElementsMatch(t, []string{"request", "leftpad"}, store.Lists().Blocklist)
}

func TestTool_MergesStoreListsWithRequestLists(t *testing.T) {
	dir := t.TempDir()
	blocklistPath := filepath.Join(dir, "blocklist.txt")
	require.NoError(t, os.WriteFile(blocklistPath, []byte("request\n"), 0o644))

	store := NewListStore(blocklistPath, "", nil)
	tool := New(nil, store)

	merged := tool.mergedLists(Request{Blocklist: []string{"extra-pkg"}})
	assert.ElementsMatch(t, []string{"request", "extra-pkg"}, merged.Blocklist)
}

func TestTool_NilListStoreFallsBackToRequestListsOnly(t *testing.T) {
	tool := New(nil, nil)
	merged := tool.mergedLists(Request{Blocklist: []string{"extra-pkg"}})
	assert.Equal(t, []string{"extra-pkg"}, merged.Blocklist)
}
