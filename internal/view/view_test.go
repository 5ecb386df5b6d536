package view

import (
	"encoding/json"
	"sido-dash/internal/boundary"
	"sido-dash/internal/dataset"
	"sido-dash/internal/join"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seoulBusan = `{"type":"FeatureCollection","features":[
 {"type":"Feature","properties":{"CTP_KOR_NM":"서울특별시"},"geometry":{"type":"Polygon","coordinates":[[[126.8,37.4],[127.2,37.4],[127.2,37.7],[126.8,37.4]]]}},
 {"type":"Feature","properties":{"CTP_KOR_NM":"부산광역시"},"geometry":{"type":"Polygon","coordinates":[[[128.9,35.0],[129.3,35.0],[129.3,35.3],[128.9,35.0]]]}}
]}`

func joined(t *testing.T) *join.Result {
	t.Helper()
	c, err := boundary.Parse([]byte(seoulBusan), "")
	require.NoError(t, err)
	tbl, err := dataset.Build("library", [][]string{
		{"지역", "거주비율"},
		{"서울특별시", "96.8"},
		{"부산광역시", "100"},
		{"대구광역시", "100"},
	}, dataset.Options{RegionColumn: "지역", Metrics: []dataset.MetricSpec{{Name: "거주비율", Kind: dataset.KindFloat, Label: "거주비율 (%)"}}})
	require.NoError(t, err)
	return join.Join(tbl, c)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"MAP": ModeMap, " map ": ModeMap, "지도": ModeMap, "bar": ModeBar, "막대그래프": ModeBar} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("scatter")
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, ModeBar, ModeMap.Toggle())
	assert.Equal(t, ModeMap, ModeBar.Toggle())
}

func TestParseModes(t *testing.T) {
	cases := map[string][]Mode{
		"":     {ModeMap},
		"  ":   {ModeMap},
		"both": {ModeMap, ModeBar},
		"ALL":  {ModeMap, ModeBar},
		"bar":  {ModeBar},
		"지도":   {ModeMap},
	}
	for in, want := range cases {
		got, err := ParseModes(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseModes("pie")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestSelectMap(t *testing.T) {
	r := joined(t)
	spec, err := Select(ModeMap, r, "거주비율", Options{ColorScale: "Blues", Zoom: 5})
	require.NoError(t, err)

	assert.Equal(t, ModeMap, spec.Kind)
	assert.Equal(t, "거주비율 (%)", spec.Label)
	assert.Equal(t, "Blues", spec.ColorScale)
	assert.Nil(t, spec.Bar)
	require.NotNil(t, spec.Map)
	assert.Equal(t, "properties.CTP_KOR_NM", spec.Map.FeatureIDKey)
	assert.Equal(t, Korea, spec.Map.Center)
	assert.Equal(t, 5.0, spec.Map.Zoom)
	assert.Equal(t, DefaultStyle, spec.Map.Style)
	assert.Equal(t, []Point{{"서울특별시", 96.8}, {"부산광역시", 100}}, spec.Points)
}

func TestSelectSeoulInColorDomain(t *testing.T) {
	r := joined(t)
	require.Len(t, r.Records, 2)
	spec, err := Select(ModeMap, r, "거주비율", Options{})
	require.NoError(t, err)

	var seoul []Point
	for _, p := range spec.Points {
		if p.Region == "서울특별시" {
			seoul = append(seoul, p)
		}
	}
	require.Len(t, seoul, 1)
	assert.Equal(t, 96.8, seoul[0].Value)
	assert.GreaterOrEqual(t, seoul[0].Value, spec.Domain[0])
	assert.LessOrEqual(t, seoul[0].Value, spec.Domain[1])
	assert.Equal(t, [2]float64{96.8, 100}, spec.Domain)
}

func TestSelectBar(t *testing.T) {
	r := joined(t)
	yr := [2]float64{80, 100}
	spec, err := Select(ModeBar, r, "거주비율", Options{YRange: &yr})
	require.NoError(t, err)

	assert.Nil(t, spec.Map)
	require.NotNil(t, spec.Bar)
	assert.Equal(t, float64(DefaultTickAngle), spec.Bar.TickAngle)
	assert.Equal(t, DefaultColorScale, spec.ColorScale)
	require.NotNil(t, spec.Bar.YRange)
	assert.Equal(t, yr, *spec.Bar.YRange)
	yr[0] = 0
	assert.Equal(t, 80.0, spec.Bar.YRange[0])
	assert.Equal(t, "서울특별시", spec.Points[0].Region)
	assert.Equal(t, "부산광역시", spec.Points[1].Region)
}

func TestSelectToggleIdempotent(t *testing.T) {
	r := joined(t)
	direct, err := Select(ModeMap, r, "거주비율", Options{})
	require.NoError(t, err)

	mode := ModeMap
	var last *ChartSpec
	for i := 0; i < 3; i++ {
		last, err = Select(mode, r, "거주비율", Options{})
		require.NoError(t, err)
		mode = mode.Toggle()
	}
	assert.Equal(t, ModeMap, last.Kind)
	assert.Equal(t, direct, last)

	a, _ := json.Marshal(direct)
	b, _ := json.Marshal(last)
	assert.JSONEq(t, string(a), string(b))
}

func TestSelectUnknownMetric(t *testing.T) {
	_, err := Select(ModeBar, joined(t), "2023년_남_0~9세", Options{})
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"거주비율"}, se.Available)
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestSelectUnknownMode(t *testing.T) {
	_, err := Select(Mode("PIE"), joined(t), "거주비율", Options{})
	assert.ErrorIs(t, err, ErrUnknownMode)
}
