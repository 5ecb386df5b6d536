// 包 view：由显示模式与连接结果生成声明式图表描述（纯函数，无隐藏状态）
package view

import (
	"errors"
	"fmt"
	"sido-dash/internal/join"
	"strings"
)

// Mode：地图 / 柱状图 两值开关，任意状态间可直接切换
type Mode string

const (
	ModeMap Mode = "MAP"
	ModeBar Mode = "BAR"
)

var (
	ErrUnknownMode   = errors.New("unknown view mode")
	ErrUnknownMetric = errors.New("unknown metric")
)

// ParseMode：接受 map/bar 及页面按钮文案（지도/막대그래프），大小写不敏感
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "map", "지도", "choropleth":
		return ModeMap, nil
	case "bar", "막대그래프", "막대":
		return ModeBar, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// ParseModes：命令行/环境变量中的模式列表；空值为 MAP，both/all 依次为 MAP、BAR
func ParseModes(s string) ([]Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return []Mode{ModeMap}, nil
	case "both", "all":
		return []Mode{ModeMap, ModeBar}, nil
	}
	m, err := ParseMode(s)
	if err != nil {
		return nil, err
	}
	return []Mode{m}, nil
}

// Toggle 返回另一种模式
func (m Mode) Toggle() Mode {
	if m == ModeMap {
		return ModeBar
	}
	return ModeMap
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Korea：地图固定中心（대한민국 중심 좌표）
var Korea = LatLon{Lat: 36.5, Lon: 127.5}

const (
	DefaultZoom       = 6
	DefaultStyle      = "carto-positron"
	DefaultColorScale = "YlOrRd"
	DefaultTickAngle  = -45
)

// Options：页面级外观参数；零值字段使用默认值
type Options struct {
	Title        string
	ColorScale   string
	Center       *LatLon
	Zoom         float64
	Style        string
	FeatureIDKey string
	TickAngle    float64
	YRange       *[2]float64
}

type Point struct {
	Region string  `json:"region"`
	Value  float64 `json:"value"`
}

type MapSpec struct {
	FeatureIDKey string  `json:"feature_id_key"`
	Center       LatLon  `json:"center"`
	Zoom         float64 `json:"zoom"`
	Style        string  `json:"style"`
}

type BarSpec struct {
	TickAngle float64     `json:"tick_angle"`
	YRange    *[2]float64 `json:"y_range,omitempty"`
}

// ChartSpec：交给渲染层的完整描述；Map 与 Bar 仅有一个非空
type ChartSpec struct {
	Kind       Mode       `json:"kind"`
	Title      string     `json:"title,omitempty"`
	Metric     string     `json:"metric"`
	Label      string     `json:"label"`
	ColorScale string     `json:"color_scale"`
	Domain     [2]float64 `json:"domain"`
	Points     []Point    `json:"points"`
	Map        *MapSpec   `json:"map,omitempty"`
	Bar        *BarSpec   `json:"bar,omitempty"`
}

// SchemaError：所选指标列在数据中不存在
type SchemaError struct {
	Metric    string
	Available []string
	Err       error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%v: %q (available: %s)", e.Err, e.Metric, strings.Join(e.Available, ", "))
}

func (e *SchemaError) Unwrap() error { return e.Err }

// 文档注释：生成图表描述
// 背景：不保存会话状态；模式作为显式参数传入，调用方自行持有交互状态。
// 约束：相同输入得到深度相等的结果；返回值不与输入共享可变切片；颜色值域取保留记录的最小/最大值。
func Select(mode Mode, r *join.Result, metric string, opts Options) (*ChartSpec, error) {
	if mode != ModeMap && mode != ModeBar {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
	}
	m, ok := r.Metric(metric)
	if !ok {
		avail := make([]string, len(r.Metrics))
		for i, x := range r.Metrics {
			avail[i] = x.Name
		}
		return nil, &SchemaError{Metric: metric, Available: avail, Err: ErrUnknownMetric}
	}
	spec := &ChartSpec{
		Kind:       mode,
		Title:      opts.Title,
		Metric:     m.Name,
		Label:      m.DisplayLabel(),
		ColorScale: orString(opts.ColorScale, DefaultColorScale),
		Points:     make([]Point, 0, len(r.Records)),
	}
	for i, rec := range r.Records {
		v := rec.Values[m.Name]
		spec.Points = append(spec.Points, Point{Region: rec.Region, Value: v})
		if i == 0 || v < spec.Domain[0] {
			spec.Domain[0] = v
		}
		if i == 0 || v > spec.Domain[1] {
			spec.Domain[1] = v
		}
	}
	if mode == ModeMap {
		center := Korea
		if opts.Center != nil {
			center = *opts.Center
		}
		zoom := opts.Zoom
		if zoom <= 0 {
			zoom = DefaultZoom
		}
		key := opts.FeatureIDKey
		if key == "" && r.Boundaries != nil {
			key = r.Boundaries.FeatureIDKey()
		}
		spec.Map = &MapSpec{FeatureIDKey: key, Center: center, Zoom: zoom, Style: orString(opts.Style, DefaultStyle)}
		return spec, nil
	}
	angle := opts.TickAngle
	if angle == 0 {
		angle = DefaultTickAngle
	}
	spec.Bar = &BarSpec{TickAngle: angle}
	if opts.YRange != nil {
		yr := *opts.YRange
		spec.Bar.YRange = &yr
	}
	return spec, nil
}

func orString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
