package resources

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	assets map[string][]byte
	calls  map[string]int
}

func newCountingFetcher(assets map[string][]byte) *countingFetcher {
	return &countingFetcher{assets: assets, calls: map[string]int{}}
}

func (fetcher *countingFetcher) Fetch(name string) ([]byte, error) {
	fetcher.calls[name]++
	data, ok := fetcher.assets[name]
	if !ok {
		return nil, errors.New("not found: " + name)
	}
	return data, nil
}

func TestDefaultCacheInstallsEmbeddedIcons(t *testing.T) {
	cache := NewDefaultCache("")
	require.NoError(t, cache.Install())

	for _, asset := range Assets {
		resource := cache.Resource(asset)
		require.NotNil(t, resource, asset)
		assert.Equal(t, asset, resource.Name())
		assert.Contains(t, string(resource.Content()), "<svg")
	}
}

func TestCacheHitSkipsFetchers(t *testing.T) {
	fetcher := newCountingFetcher(map[string][]byte{"root.svg": []byte("root"), "a.svg": []byte("a")})
	cache := NewCache(nil, "test-v1", []string{"root.svg", "a.svg"}, "root.svg", fetcher)
	require.NoError(t, cache.Install())

	assert.Equal(t, []byte("a"), cache.Resource("a.svg").Content())
	assert.Equal(t, []byte("a"), cache.Resource("a.svg").Content())
	assert.Equal(t, 1, fetcher.calls["a.svg"])
}

func TestCacheMissFetchesAndStores(t *testing.T) {
	fetcher := newCountingFetcher(map[string][]byte{"root.svg": []byte("root"), "extra.svg": []byte("extra")})
	cache := NewCache(nil, "test-v1", []string{"root.svg"}, "root.svg", fetcher)
	require.NoError(t, cache.Install())

	assert.Equal(t, []byte("extra"), cache.Resource("extra.svg").Content())
	cache.Resource("extra.svg")
	assert.Equal(t, 1, fetcher.calls["extra.svg"])
}

func TestCacheFallsBackToRoot(t *testing.T) {
	fetcher := newCountingFetcher(map[string][]byte{"root.svg": []byte("root")})
	cache := NewCache(nil, "test-v1", []string{"root.svg"}, "root.svg", fetcher)

	assert.Nil(t, cache.Resource("missing.svg"))

	require.NoError(t, cache.Install())
	resource := cache.Resource("missing.svg")
	require.NotNil(t, resource)
	assert.Equal(t, "root.svg", resource.Name())
}

func TestInstallFailsWhenAssetMissing(t *testing.T) {
	storage := NewStorage()
	fetcher := newCountingFetcher(map[string][]byte{"root.svg": []byte("root")})
	cache := NewCache(storage, "test-v1", []string{"root.svg", "gone.svg"}, "root.svg", fetcher)

	require.Error(t, cache.Install())
	assert.Empty(t, storage.Keys())
}

func TestActivateDropsOtherCaches(t *testing.T) {
	storage := NewStorage()
	fetcher := newCountingFetcher(map[string][]byte{"root.svg": []byte("root")})

	old := NewCache(storage, "test-v0", []string{"root.svg"}, "root.svg", fetcher)
	current := NewCache(storage, "test-v1", []string{"root.svg"}, "root.svg", fetcher)
	require.NoError(t, old.Install())
	require.NoError(t, current.Install())
	assert.Equal(t, []string{"test-v0", "test-v1"}, storage.Keys())

	assert.Equal(t, []string{"test-v0"}, current.Activate())
	assert.Equal(t, []string{"test-v1"}, storage.Keys())
	assert.Empty(t, current.Activate())
}

func TestOverrideDirTakesPrecedence(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, IconRunning), []byte("<svg id=\"custom\"/>"), 0o644))

	cache := NewDefaultCache(dir)
	require.NoError(t, cache.Install())

	assert.Equal(t, "<svg id=\"custom\"/>", string(cache.Resource(IconRunning).Content()))
	assert.Contains(t, string(cache.Resource(IconPaused).Content()), "#c62828")
}

func TestFetcherRejectsInvalidNames(t *testing.T) {
	_, err := EmbeddedFetcher().Fetch("../go.mod")
	require.Error(t, err)
}
