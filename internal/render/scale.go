package render

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot/palette/brewer"
)

var ErrUnknownScale = errors.New("unknown color scale")

// 色阶取 ColorBrewer 顺序色板的最大级数，值在相邻色标间线性插值
const scaleClasses = 9

// Scale：连续色阶，把 [lo, hi] 映射到色标
type Scale struct {
	Name   string
	stops  []color.Color
	lo, hi float64
}

func NewScale(name string, domain [2]float64) (*Scale, error) {
	if name == "" {
		name = "YlOrRd"
	}
	pal, err := brewer.GetPalette(brewer.TypeSequential, name, scaleClasses)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrUnknownScale, name, err)
	}
	return &Scale{Name: name, stops: pal.Colors(), lo: domain[0], hi: domain[1]}, nil
}

// At 返回 v 对应的颜色；值域退化（lo == hi）时取最深色，越界值截断到两端
func (s *Scale) At(v float64) color.Color {
	t := 1.0
	if s.hi > s.lo {
		t = (v - s.lo) / (s.hi - s.lo)
	}
	if t <= 0 {
		return s.stops[0]
	}
	if t >= 1 {
		return s.stops[len(s.stops)-1]
	}
	pos := t * float64(len(s.stops)-1)
	i := int(pos)
	return lerp(s.stops[i], s.stops[i+1], pos-float64(i))
}

func lerp(a, b color.Color, f float64) color.Color {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	mix := func(x, y uint32) uint8 {
		return uint8((float64(x) + (float64(y)-float64(x))*f) / 257)
	}
	return color.RGBA{R: mix(ar, br), G: mix(ag, bg), B: mix(ab, bb), A: mix(aa, ba)}
}
