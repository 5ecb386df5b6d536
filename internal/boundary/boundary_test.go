package boundary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

const sample = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"CTP_KOR_NM": " 서울특별시 "},
     "geometry": {"type": "Polygon", "coordinates": [[[126.8,37.4],[127.2,37.4],[127.2,37.7],[126.8,37.7],[126.8,37.4]]]}},
    {"type": "Feature", "properties": {"CTP_KOR_NM": "제주특별자치도"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[126.1,33.1],[126.9,33.1],[126.9,33.6],[126.1,33.6],[126.1,33.1]]]]}},
    {"type": "Feature", "properties": {"CTP_KOR_NM": "제주특별자치도"},
     "geometry": {"type": "Polygon", "coordinates": [[[126.2,34.0],[126.3,34.0],[126.3,34.1],[126.2,34.1],[126.2,34.0]]]}},
    {"type": "Feature", "properties": {"OTHER": "x"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}
  ]
}`

func TestParseCollection(t *testing.T) {
	c, err := Parse([]byte(sample), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultKeyProperty, c.KeyProperty())
	assert.Equal(t, "properties.CTP_KOR_NM", c.FeatureIDKey())
	assert.Equal(t, []string{"서울특별시", "제주특별자치도"}, c.Keys())
	assert.True(t, c.Has("서울특별시"))
	assert.True(t, c.Has(" 서울특별시"))
	assert.False(t, c.Has("부산광역시"))

	jeju, ok := c.Get("제주특별자치도")
	require.True(t, ok)
	assert.Equal(t, 2, jeju.Geometry.NumPolygons())

	seoul, ok := c.Get("서울특별시")
	require.True(t, ok)
	assert.InDelta(t, 127.0, seoul.Centroid.X(), 1e-9)
	assert.InDelta(t, 37.55, seoul.Centroid.Y(), 1e-9)

	b := c.Bounds()
	assert.InDelta(t, 126.1, b[0], 1e-9)
	assert.InDelta(t, 33.1, b[1], 1e-9)
	assert.InDelta(t, 127.2, b[2], 1e-9)
	assert.InDelta(t, 37.7, b[3], 1e-9)
}

func TestLoadFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sido.json")
	require.NoError(t, os.WriteFile(p, []byte(sample), 0o644))

	c, err := Load(p, DefaultKeyProperty)
	require.NoError(t, err)
	assert.Equal(t, p, c.Source())
	assert.Equal(t, 2, c.Len())
}

func TestLoadSingleFeature(t *testing.T) {
	one := `{"type":"Feature","properties":{"name":"경기도"},
	  "geometry":{"type":"Polygon","coordinates":[[[126,37],[127,37],[127,38],[126,37]]]}}`
	c, err := Parse([]byte(one), "name")
	require.NoError(t, err)
	assert.Equal(t, []string{"경기도"}, c.Keys())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), "")
	require.Error(t, err)

	_, err = Parse([]byte(`{"type":"FeatureCollection","features":[]}`), "")
	require.Error(t, err)

	_, err = Parse([]byte(`not json`), "")
	require.Error(t, err)

	point := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"CTP_KOR_NM":"경기도"},
	  "geometry":{"type":"Point","coordinates":[127,37]}}]}`
	_, err = Parse([]byte(point), "")
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestLocate(t *testing.T) {
	c, err := Parse([]byte(sample), "")
	require.NoError(t, err)

	name, ok := c.Locate(127.0, 37.5)
	require.True(t, ok)
	assert.Equal(t, "서울특별시", name)

	// 合并进来的第二块多边形同样命中
	name, ok = c.Locate(126.25, 34.05)
	require.True(t, ok)
	assert.Equal(t, "제주특별자치도", name)

	_, ok = c.Locate(129.0, 35.1)
	assert.False(t, ok)
}

func TestContainsRespectsHoles(t *testing.T) {
	const donut = `{"type":"Feature","properties":{"CTP_KOR_NM":"경기도"},"geometry":{"type":"Polygon","coordinates":[
	 [[126.0,36.9],[127.9,36.9],[127.9,38.3],[126.0,38.3],[126.0,36.9]],
	 [[126.7,37.4],[127.2,37.4],[127.2,37.7],[126.7,37.7],[126.7,37.4]]]}}`
	c, err := Parse([]byte(donut), "")
	require.NoError(t, err)
	f, ok := c.Get("경기도")
	require.True(t, ok)

	assert.True(t, Contains(f.Geometry, geom.Coord{127.5, 37.0}))
	assert.False(t, Contains(f.Geometry, geom.Coord{127.0, 37.5}))
	_, ok = c.Locate(127.0, 37.5)
	assert.False(t, ok)
}
