package config

import (
	"os"
	"path/filepath"
	"testing"

	"sido-dash/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PAGES_FILE", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("BOUNDARY_PATH", "")
	t.Setenv("BOUNDARY_KEY", "")
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, "CTP_KOR_NM", c.Boundary.Key)
	assert.Equal(t, []string{"population", "movies", "library"}, c.Names())
	assert.Equal(t, filepath.Join("data", "gdf_korea_sido_2023.json"), c.ResolvePath(c.Boundary.Path))

	movies, ok := c.Page("movies")
	require.True(t, ok)
	assert.Equal(t, 5, movies.Table.SkipRows)
	assert.Len(t, movies.Table.Columns, 13)
	assert.Equal(t, []dataset.MetricSpec{{Name: "전체_관객수", Kind: dataset.KindInt, Label: "관객수"}}, movies.Table.Metrics)

	lib, ok := c.Page("library")
	require.True(t, ok)
	assert.Len(t, lib.Table.Rows, 18)
	opts := lib.ViewOptions("properties.CTP_KOR_NM")
	require.NotNil(t, opts.YRange)
	assert.Equal(t, [2]float64{80, 100}, *opts.YRange)
	assert.Equal(t, 5.0, opts.Zoom)
	assert.Equal(t, "Blues", opts.ColorScale)

	pop, ok := c.Page("population")
	require.True(t, ok)
	assert.Equal(t, "2023년_{gender}_{age}", pop.MetricTemplate)
	assert.Len(t, pop.AgeGroups, 11)
	assert.True(t, pop.Table.AllMetrics)
}

func TestLoadEnvOverrides(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pages.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
boundary: {path: sido.json}
pages:
  - name: only
    table: {path: /abs/x.csv, region_column: 지역}
    metric: v
`), 0o644))
	t.Setenv("PAGES_FILE", p)
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("BOUNDARY_KEY", "SIDO_NM")
	t.Setenv("BOUNDARY_PATH", "")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", c.DataDir)
	assert.Equal(t, "SIDO_NM", c.Boundary.Key)
	assert.Equal(t, filepath.Join("/srv/data", "sido.json"), c.ResolvePath(c.Boundary.Path))
	assert.Equal(t, "/abs/x.csv", c.ResolvePath("/abs/x.csv"))
	_, ok := c.Page("missing")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"no boundary":   "pages: [{name: a, table: {path: x, region_column: r}, metric: m}]",
		"no pages":      "boundary: {path: b}",
		"duplicate":     "boundary: {path: b}\npages: [{name: a, table: {path: x, region_column: r}, metric: m}, {name: a, table: {path: x, region_column: r}, metric: m}]",
		"path and rows": "boundary: {path: b}\npages: [{name: a, table: {path: x, rows: [[r]], region_column: r}, metric: m}]",
		"no region":     "boundary: {path: b}\npages: [{name: a, table: {path: x}, metric: m}]",
		"no metric":     "boundary: {path: b}\npages: [{name: a, table: {path: x, region_column: r}}]",
		"bad mode":      "boundary: {path: b}\npages: [{name: a, table: {path: x, region_column: r}, metric: m, default_mode: pie}]",
		"bad y range":   "boundary: {path: b}\npages: [{name: a, table: {path: x, region_column: r}, metric: m, view: {y_range: [1]}}]",
		"not yaml":      "pages: [",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, ErrInvalid, name)
	}
}

func TestLoadMissingPagesFile(t *testing.T) {
	t.Setenv("PAGES_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	require.Error(t, err)
}
