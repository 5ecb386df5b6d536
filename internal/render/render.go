// 包 render：把 view.ChartSpec 画成静态图片（PNG/SVG/PDF，按扩展名）
// 背景：宿主没有浏览器端图表库时的离线输出；行政区名需系统提供含韩文字形的字体，默认字体下显示为缺字框。
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"sido-dash/internal/boundary"
	"sido-dash/internal/view"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	ErrNoBoundaries = errors.New("map view needs boundaries")
	ErrNoPoints     = errors.New("chart has no points")
)

// 默认画布尺寸（点）
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// 地图瓦片边长（像素），用于由缩放级别推算可视经度跨度
const tileSize = 512

// 文档注释：构建图表
// 背景：MAP 按 Domain 着色每个行政区多边形并按中心/缩放裁出视窗；BAR 每个行政区一根柱，柱色同样取自色阶。
// 约束：bounds 仅 MAP 需要；未在边界集合中的点直接跳过；连接后无任何点时返回 ErrNoPoints。
func Chart(spec *view.ChartSpec, bounds *boundary.Collection, w, h vg.Length) (*plot.Plot, error) {
	if len(spec.Points) == 0 {
		return nil, ErrNoPoints
	}
	sc, err := NewScale(spec.ColorScale, spec.Domain)
	if err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = spec.Title
	p.Title.TextStyle.Font.Size = vg.Points(16)

	switch spec.Kind {
	case view.ModeMap:
		if bounds == nil {
			return nil, ErrNoBoundaries
		}
		if err := choropleth(p, spec, bounds, sc, w, h); err != nil {
			return nil, err
		}
	case view.ModeBar:
		if err := bars(p, spec, sc); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", view.ErrUnknownMode, string(spec.Kind))
	}
	return p, nil
}

// Save 按扩展名写文件；w/h 为 0 时取默认尺寸
func Save(path string, spec *view.ChartSpec, bounds *boundary.Collection, w, h vg.Length) error {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf", ".jpg", ".jpeg":
	default:
		return fmt.Errorf("render: unsupported output %q", path)
	}
	p, err := Chart(spec, bounds, w, h)
	if err != nil {
		return err
	}
	return p.Save(w, h, path)
}

func choropleth(p *plot.Plot, spec *view.ChartSpec, bounds *boundary.Collection, sc *Scale, w, h vg.Length) error {
	p.HideAxes()
	p.X.Label.Text = spec.Label
	var marks plotter.XYLabels
	for _, pt := range spec.Points {
		f, ok := bounds.Get(pt.Region)
		if !ok {
			continue
		}
		fill := sc.At(pt.Value)
		mp := f.Geometry
		for i := 0; i < mp.NumPolygons(); i++ {
			poly := mp.Polygon(i)
			rings := make([]plotter.XYer, 0, poly.NumLinearRings())
			for j := 0; j < poly.NumLinearRings(); j++ {
				coords := poly.LinearRing(j).Coords()
				xys := make(plotter.XYs, len(coords))
				for k, c := range coords {
					xys[k].X, xys[k].Y = c.X(), c.Y()
				}
				rings = append(rings, xys)
			}
			pg, err := plotter.NewPolygon(rings...)
			if err != nil {
				return fmt.Errorf("render %s: %w", pt.Region, err)
			}
			pg.Color = fill
			pg.LineStyle.Color = color.White
			pg.LineStyle.Width = vg.Points(0.5)
			p.Add(pg)
		}
		// 质心落在自身区域内时才标注数值（凹形或多岛区域的质心可能在区域外）
		if len(f.Centroid) < 2 {
			continue
		}
		if name, ok := bounds.Locate(f.Centroid.X(), f.Centroid.Y()); ok && name == f.Name {
			marks.XYs = append(marks.XYs, plotter.XY{X: f.Centroid.X(), Y: f.Centroid.Y()})
			marks.Labels = append(marks.Labels, strconv.FormatFloat(pt.Value, 'f', -1, 64))
		}
	}
	if len(marks.XYs) > 0 {
		lb, err := plotter.NewLabels(marks)
		if err != nil {
			return err
		}
		p.Add(lb)
	}
	x0, x1, y0, y1 := Window(spec.Map.Center, spec.Map.Zoom, w, h)
	p.X.Min, p.X.Max = x0, x1
	p.Y.Min, p.Y.Max = y0, y1
	return nil
}

// Window：由中心与缩放级别得到经纬度视窗
// 约束：经度跨度 = 画布宽/瓦片边长 × 360/2^zoom；纬度跨度按画布宽高比与中心纬度余弦折算。
func Window(center view.LatLon, zoom float64, w, h vg.Length) (minLon, maxLon, minLat, maxLat float64) {
	if zoom <= 0 {
		zoom = view.DefaultZoom
	}
	lonSpan := float64(w) / tileSize * 360 / math.Pow(2, zoom)
	latSpan := lonSpan * float64(h) / float64(w) * math.Cos(center.Lat*math.Pi/180)
	return center.Lon - lonSpan/2, center.Lon + lonSpan/2, center.Lat - latSpan/2, center.Lat + latSpan/2
}

func bars(p *plot.Plot, spec *view.ChartSpec, sc *Scale) error {
	p.X.Label.Text = "행정구역"
	p.Y.Label.Text = spec.Label
	names := make([]string, len(spec.Points))
	for i, pt := range spec.Points {
		names[i] = pt.Region
		b, err := plotter.NewBarChart(plotter.Values{pt.Value}, vg.Points(18))
		if err != nil {
			return fmt.Errorf("render %s: %w", pt.Region, err)
		}
		b.XMin = float64(i)
		b.Color = sc.At(pt.Value)
		b.LineStyle.Width = vg.Length(0)
		p.Add(b)
	}
	p.NominalX(names...)
	// 正角度为逆时针，与常见的 tickangle 方向相反
	p.X.Tick.Label.Rotation = -spec.Bar.TickAngle * math.Pi / 180
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if yr := spec.Bar.YRange; yr != nil {
		p.Y.Min, p.Y.Max = yr[0], yr[1]
	} else {
		p.Y.Min = math.Min(0, spec.Domain[0])
		p.Y.Max = spec.Domain[1] * 1.05
	}
	return nil
}
