// 包 boundary：行政区边界集合（GeoJSON 多边形，按名称属性索引），加载后只读
package boundary

import (
	"errors"
	"fmt"
	"os"
	"sido-dash/internal/logger"
	"sido-dash/internal/region"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
)

// DefaultKeyProperty：시도 边界数据（gdf_korea_sido）中行政区韩文名称属性
const DefaultKeyProperty = "CTP_KOR_NM"

var (
	ErrEmpty       = errors.New("boundary: no features")
	ErrUnsupported = errors.New("boundary: unsupported geometry")
)

// Feature：一个命名行政区的几何；Polygon 统一提升为 MultiPolygon
type Feature struct {
	Name     string
	Geometry *geom.MultiPolygon
	Centroid geom.Coord
}

// Collection：边界集合快照
// 约束：构造后不再修改；所有访问器返回副本或只读引用，可在多处共享
type Collection struct {
	source  string
	keyProp string
	order   []string
	byName  map[string]*Feature
	bounds  *geom.Bounds
}

// 文档注释：从 GeoJSON 文件加载边界集合
// 背景：数据来源为 FeatureCollection 或单个 Feature（UTF-8 文本）；以 keyProp 属性作为行政区键，键值去除首尾空白。
// 约束：缺少键属性的要素被跳过并记录 warn；同名要素的多边形合并到同一 MultiPolygon；非面几何直接报错。
func Load(path, keyProp string) (*Collection, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("boundary: read %s: %w", path, err)
	}
	c, err := Parse(b, keyProp)
	if err != nil {
		return nil, fmt.Errorf("boundary: %s: %w", path, err)
	}
	c.source = path
	logger.For("boundary").Info("boundary_load_ok", "path", path, "features", c.Len(), "key", c.keyProp)
	return c, nil
}

// Parse：从内存中的 GeoJSON 文本构建集合
func Parse(b []byte, keyProp string) (*Collection, error) {
	if keyProp == "" {
		keyProp = DefaultKeyProperty
	}
	var feats []*geojson.Feature
	var fc geojson.FeatureCollection
	if err := fc.UnmarshalJSON(b); err == nil && len(fc.Features) > 0 {
		feats = fc.Features
	} else {
		var f geojson.Feature
		if e2 := f.UnmarshalJSON(b); e2 != nil {
			if err != nil {
				return nil, err
			}
			return nil, e2
		}
		feats = []*geojson.Feature{&f}
	}
	c := &Collection{keyProp: keyProp, byName: make(map[string]*Feature, len(feats)), bounds: geom.NewBounds(geom.XY)}
	l := logger.For("boundary")
	for i, f := range feats {
		name := propString(f.Properties, keyProp)
		if name == "" {
			l.Warn("boundary_feature_no_key", "index", i, "key", keyProp)
			continue
		}
		mp, err := asMultiPolygon(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		if cur, ok := c.byName[name]; ok {
			for j := 0; j < mp.NumPolygons(); j++ {
				if err := cur.Geometry.Push(mp.Polygon(j)); err != nil {
					return nil, fmt.Errorf("feature %q: %w", name, err)
				}
			}
			continue
		}
		c.byName[name] = &Feature{Name: name, Geometry: mp}
		c.order = append(c.order, name)
	}
	if len(c.order) == 0 {
		return nil, ErrEmpty
	}
	for _, name := range c.order {
		f := c.byName[name]
		if cen, err := xy.Centroid(f.Geometry); err == nil {
			f.Centroid = cen
		}
		c.bounds.Extend(f.Geometry)
		if !region.IsProvince(name) {
			l.Debug("boundary_feature_not_province", "name", name)
		}
	}
	return c, nil
}

func asMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch v := g.(type) {
	case *geom.MultiPolygon:
		return v, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(v.Layout())
		if err := mp.Push(v); err != nil {
			return nil, err
		}
		return mp, nil
	case nil:
		return nil, fmt.Errorf("%w: null geometry", ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, g)
	}
}

func propString(p map[string]interface{}, k string) string {
	if p == nil {
		return ""
	}
	switch v := p[k].(type) {
	case string:
		return region.Normalize(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Source 返回加载路径（Parse 构建时为空）
func (c *Collection) Source() string { return c.source }

// KeyProperty 返回作为键的 GeoJSON 属性名
func (c *Collection) KeyProperty() string { return c.keyProp }

// FeatureIDKey：图表层使用的键路径，例如 properties.CTP_KOR_NM
func (c *Collection) FeatureIDKey() string { return "properties." + c.keyProp }

func (c *Collection) Len() int { return len(c.order) }

// Has：键比较前仅做 region.Normalize
func (c *Collection) Has(name string) bool {
	_, ok := c.byName[region.Normalize(name)]
	return ok
}

func (c *Collection) Get(name string) (Feature, bool) {
	f, ok := c.byName[region.Normalize(name)]
	if !ok {
		return Feature{}, false
	}
	return *f, true
}

// Keys：按文件中首次出现的顺序返回全部键
func (c *Collection) Keys() []string { return append([]string(nil), c.order...) }

// Bounds：集合整体包围盒 [minLon, minLat, maxLon, maxLat]
func (c *Collection) Bounds() [4]float64 {
	return [4]float64{c.bounds.Min(0), c.bounds.Min(1), c.bounds.Max(0), c.bounds.Max(1)}
}
