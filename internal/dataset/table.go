// 包 dataset：行政区统计表的加载、清洗与缓存
package dataset

import (
	"errors"
	"fmt"
)

// Kind：指标列的数值类型
type Kind string

const (
	KindInt   Kind = "int"
	KindFloat Kind = "float"
)

var (
	ErrMalformedHeader = errors.New("malformed header")
	ErrMissingColumn   = errors.New("missing column")
	ErrBadNumber       = errors.New("bad number")
	ErrDuplicateRegion = errors.New("duplicate region")
)

// MetricSpec：需要转换为数值的列
type MetricSpec struct {
	Name  string `json:"name" yaml:"name"`
	Kind  Kind   `json:"kind" yaml:"kind"`
	Label string `json:"label,omitempty" yaml:"label"`
}

// DisplayLabel：图例/坐标轴使用的名称，未配置时回退列名
func (m MetricSpec) DisplayLabel() string {
	if m.Label != "" {
		return m.Label
	}
	return m.Name
}

// Record：一个行政区及其指标值
type Record struct {
	Region string             `json:"region"`
	Values map[string]float64 `json:"values"`
}

// Table：加载结果
// 约束：加载后只读；缓存命中时多个调用方共享同一实例，不得修改 Records
type Table struct {
	Source       string       `json:"source"`
	RegionColumn string       `json:"region_column"`
	Metrics      []MetricSpec `json:"metrics"`
	Records      []Record     `json:"records"`
}

// Metric 按列名查找指标定义
func (t *Table) Metric(name string) (MetricSpec, bool) {
	for _, m := range t.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return MetricSpec{}, false
}

// MetricNames 返回指标列名（表头顺序）
func (t *Table) MetricNames() []string {
	out := make([]string, len(t.Metrics))
	for i, m := range t.Metrics {
		out[i] = m.Name
	}
	return out
}

// Regions 返回记录中的行政区（插入顺序）
func (t *Table) Regions() []string {
	out := make([]string, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Region
	}
	return out
}

// LoadError：加载失败，携带阶段与定位信息
// 阶段：open（读取/解码）、header（表头）、row（行结构）、parse（数值转换）
type LoadError struct {
	Path   string
	Stage  string
	Row    int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: %s stage: row %d column %q: %v", e.Path, e.Stage, e.Row, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("load %s: %s stage: row %d: %v", e.Path, e.Stage, e.Row, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: %s stage: column %q: %v", e.Path, e.Stage, e.Column, e.Err)
	}
	return fmt.Sprintf("load %s: %s stage: %v", e.Path, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
