package boundary

import (
	"github.com/twpayne/go-geom"
)

// 文档注释：点所属行政区
// 背景：包围盒粗筛后做射线法（Even-Odd）精确判定；外环命中且不落在任何洞内视为命中。
// 约束：坐标为 WGS84 经纬度；边界上的点归属不确定；按集合顺序返回第一个命中。
func (c *Collection) Locate(lon, lat float64) (string, bool) {
	pt := geom.Coord{lon, lat}
	for _, name := range c.order {
		f := c.byName[name]
		if !f.Geometry.Bounds().OverlapsPoint(geom.XY, pt) {
			continue
		}
		if Contains(f.Geometry, pt) {
			return name, true
		}
	}
	return "", false
}

// Contains：点是否落在多面内
func Contains(mp *geom.MultiPolygon, pt geom.Coord) bool {
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		if p.NumLinearRings() == 0 || !inRing(pt, p.LinearRing(0).Coords()) {
			continue
		}
		hole := false
		for j := 1; j < p.NumLinearRings(); j++ {
			if inRing(pt, p.LinearRing(j).Coords()) {
				hole = true
				break
			}
		}
		if !hole {
			return true
		}
	}
	return false
}

func inRing(pt geom.Coord, ring []geom.Coord) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	x, y := pt.X(), pt.Y()
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X(), ring[i].Y()
		xj, yj := ring[j].X(), ring[j].Y()
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
