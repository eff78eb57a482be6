package buildcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageConfig struct {
	Name   string            `json:"name"`
	Charts []string          `json:"charts"`
	Labels map[string]string `json:"labels"`
}

func TestComputeHash(t *testing.T) {
	a := pageConfig{Name: "overview", Charts: []string{"bar"}, Labels: map[string]string{"1": "m", "2": "f"}}
	b := pageConfig{Name: "overview", Charts: []string{"bar"}, Labels: map[string]string{"2": "f", "1": "m"}}

	ha, err := ComputeHash(a)
	require.NoError(t, err)
	hb, err := ComputeHash(b)
	require.NoError(t, err)
	assert.Equal(t, ha, hb)
	assert.Len(t, ha, 16)

	b.Charts = append(b.Charts, "histogram")
	hc, err := ComputeHash(b)
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)

	_, err = ComputeHash(func() {})
	assert.Error(t, err)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0644))

	h1, err := HashFile(path)
	require.NoError(t, err)
	h2, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,3\n"), 0644))
	h3, err := HashFile(path)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	_, err = HashFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestLoadManifestMissing(t *testing.T) {
	m, err := LoadManifest(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestSaveAndLoadManifest(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "site")
	m := NewManifest()
	m.Set("overview", "0000000000000001")
	m.Set("sales", "0000000000000002")
	require.NoError(t, SaveManifest(m, dir))

	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, m.Pages, loaded.Pages)

	// повторное сохранение заменяет записи, а не дописывает
	m2 := NewManifest()
	m2.Set("sales", "0000000000000003")
	require.NoError(t, SaveManifest(m2, dir))
	loaded, err = LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"sales": "0000000000000003"}, loaded.Pages)

	assert.Error(t, SaveManifest(nil, dir))
}

func TestNeedsRebuild(t *testing.T) {
	cfg := pageConfig{Name: "overview", Charts: []string{"bar"}}
	hash, err := ComputeHash(cfg)
	require.NoError(t, err)

	m := NewManifest()
	m.Set("overview", hash)

	tests := []struct {
		name     string
		page     string
		config   interface{}
		manifest *Manifest
		want     bool
	}{
		{"no manifest", "overview", cfg, nil, true},
		{"unchanged", "overview", cfg, m, false},
		{"changed", "overview", pageConfig{Name: "overview", Charts: []string{"pie"}}, m, true},
		{"unknown page", "sales", cfg, m, true},
		{"unhashable", "overview", make(chan int), m, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NeedsRebuild(tt.page, tt.config, tt.manifest))
		})
	}
}

func TestManifestLocked(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveManifest(NewManifest(), dir))

	db, err := bolt.Open(filepath.Join(dir, ManifestFile), 0600, nil)
	require.NoError(t, err)
	defer db.Close()

	_, err = LoadManifest(dir)
	assert.Equal(t, ErrManifestLocked, err)
}
