// 包 config：页面定义（YAML）与环境变量覆盖
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sido-dash/internal/dataset"
	"sido-dash/internal/utils"
	"sido-dash/internal/view"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed pages.yaml
var defaultPages []byte

var ErrInvalid = errors.New("invalid config")

type Config struct {
	DataDir  string         `yaml:"data_dir"`
	Boundary BoundaryConfig `yaml:"boundary"`
	Pages    []PageConfig   `yaml:"pages"`
}

type BoundaryConfig struct {
	Path string `yaml:"path"`
	Key  string `yaml:"key"`
}

// TableConfig：path 与 rows 二选一；rows 首行为表头（用于没有源文件的静态数据，如图书馆页）
type TableConfig struct {
	Path           string               `yaml:"path"`
	Encoding       string               `yaml:"encoding"`
	Sheet          string               `yaml:"sheet"`
	SkipRows       int                  `yaml:"skip_rows"`
	Columns        []string             `yaml:"columns"`
	RegionColumn   string               `yaml:"region_column"`
	Metrics        []dataset.MetricSpec `yaml:"metrics"`
	AllMetrics     bool                 `yaml:"all_metrics"`
	AllMetricsKind dataset.Kind         `yaml:"all_metrics_kind"`
	Rows           [][]string           `yaml:"rows"`
}

func (t TableConfig) Options() dataset.Options {
	return dataset.Options{
		SkipRows:       t.SkipRows,
		Columns:        t.Columns,
		RegionColumn:   t.RegionColumn,
		Metrics:        t.Metrics,
		AllMetrics:     t.AllMetrics,
		AllMetricsKind: t.AllMetricsKind,
		Encoding:       t.Encoding,
		Sheet:          t.Sheet,
	}
}

type ViewConfig struct {
	ColorScale string       `yaml:"color_scale"`
	Zoom       float64      `yaml:"zoom"`
	Center     *view.LatLon `yaml:"center"`
	Style      string       `yaml:"style"`
	TickAngle  float64      `yaml:"tick_angle"`
	YRange     []float64    `yaml:"y_range"`
}

type PageConfig struct {
	Name           string      `yaml:"name"`
	Title          string      `yaml:"title"`
	Table          TableConfig `yaml:"table"`
	Metric         string      `yaml:"metric"`
	MetricTemplate string      `yaml:"metric_template"`
	AgeGroups      []string    `yaml:"age_groups"`
	Genders        []string    `yaml:"genders"`
	Label          string      `yaml:"label"`
	DefaultMode    string      `yaml:"default_mode"`
	ShowTable      bool        `yaml:"show_table"`
	View           ViewConfig  `yaml:"view"`
}

// ViewOptions 转换为 view.Options；featureKey 来自边界集合
func (p PageConfig) ViewOptions(featureKey string) view.Options {
	o := view.Options{
		Title:        p.Title,
		ColorScale:   p.View.ColorScale,
		Center:       p.View.Center,
		Zoom:         p.View.Zoom,
		Style:        p.View.Style,
		FeatureIDKey: featureKey,
		TickAngle:    p.View.TickAngle,
	}
	if len(p.View.YRange) == 2 {
		o.YRange = &[2]float64{p.View.YRange[0], p.View.YRange[1]}
	}
	return o
}

// Parse 解析 YAML 并校验
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// 文档注释：加载配置
// 背景：PAGES_FILE 为空时使用内置页面定义（人口/电影/图书馆三页）；DATA_DIR、BOUNDARY_PATH、BOUNDARY_KEY 覆盖文件中的值。
// 约束：相对路径以 DataDir 为基准解析；校验失败返回 ErrInvalid。
func Load() (*Config, error) {
	b := defaultPages
	if p := utils.EnvString("PAGES_FILE", ""); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		b = raw
	}
	c, err := Parse(b)
	if err != nil {
		return nil, err
	}
	c.DataDir = utils.EnvString("DATA_DIR", orDefault(c.DataDir, "data"))
	c.Boundary.Path = utils.EnvString("BOUNDARY_PATH", c.Boundary.Path)
	c.Boundary.Key = utils.EnvString("BOUNDARY_KEY", c.Boundary.Key)
	return c, nil
}

func (c *Config) Validate() error {
	if c.Boundary.Path == "" {
		return fmt.Errorf("%w: boundary.path is required", ErrInvalid)
	}
	if len(c.Pages) == 0 {
		return fmt.Errorf("%w: no pages", ErrInvalid)
	}
	seen := map[string]bool{}
	for i, p := range c.Pages {
		if p.Name == "" {
			return fmt.Errorf("%w: pages[%d]: name is required", ErrInvalid, i)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: duplicate page %q", ErrInvalid, p.Name)
		}
		seen[p.Name] = true
		if (p.Table.Path == "") == (len(p.Table.Rows) == 0) {
			return fmt.Errorf("%w: page %q: exactly one of table.path and table.rows", ErrInvalid, p.Name)
		}
		if p.Table.RegionColumn == "" {
			return fmt.Errorf("%w: page %q: table.region_column is required", ErrInvalid, p.Name)
		}
		if p.Metric == "" && p.MetricTemplate == "" {
			return fmt.Errorf("%w: page %q: metric or metric_template is required", ErrInvalid, p.Name)
		}
		if p.DefaultMode != "" {
			if _, err := view.ParseMode(p.DefaultMode); err != nil {
				return fmt.Errorf("%w: page %q: %v", ErrInvalid, p.Name, err)
			}
		}
		if n := len(p.View.YRange); n != 0 && n != 2 {
			return fmt.Errorf("%w: page %q: view.y_range needs two values", ErrInvalid, p.Name)
		}
	}
	return nil
}

// Page 按名称查找页面
func (c *Config) Page(name string) (PageConfig, bool) {
	for _, p := range c.Pages {
		if p.Name == name {
			return p, true
		}
	}
	return PageConfig{}, false
}

// Names 返回页面名（配置顺序）
func (c *Config) Names() []string {
	out := make([]string, len(c.Pages))
	for i, p := range c.Pages {
		out[i] = p.Name
	}
	return out
}

// ResolvePath：绝对路径原样返回，相对路径拼接 DataDir
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.DataDir, p)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
