// 包 join：将行政区记录与边界集合按名称对齐
package join

import (
	"sido-dash/internal/boundary"
	"sido-dash/internal/dataset"
	"sido-dash/internal/logger"
	"sido-dash/internal/metrics"
	"sido-dash/internal/region"
)

// Result：连接结果
// Boundaries 为传入集合本身（同一指针，未做修改）；Dropped 为表中有而边界中无的行政区，
// Uncovered 为边界中有而表中无的键。两者仅供报告，不视为错误。
type Result struct {
	Source     string
	Metrics    []dataset.MetricSpec
	Records    []dataset.Record
	Boundaries *boundary.Collection
	Dropped    []string
	Uncovered  []string
}

// 文档注释：按行政区名精确连接
// 背景：表与边界来自不同发布方，名称可能不一致（如改名后的特别自治道）；未匹配行直接过滤。
// 约束：仅做首尾空白去除，不做模糊匹配；记录顺序保持表中插入顺序；输入表不被修改。
func Join(t *dataset.Table, c *boundary.Collection) *Result {
	r := &Result{Source: t.Source, Metrics: t.Metrics, Boundaries: c, Records: make([]dataset.Record, 0, len(t.Records))}
	present := make(map[string]bool, len(t.Records))
	for _, rec := range t.Records {
		name := region.Normalize(rec.Region)
		present[name] = true
		if !c.Has(name) {
			r.Dropped = append(r.Dropped, name)
			continue
		}
		if name != rec.Region {
			rec = dataset.Record{Region: name, Values: rec.Values}
		}
		r.Records = append(r.Records, rec)
	}
	for _, k := range c.Keys() {
		if !present[k] {
			r.Uncovered = append(r.Uncovered, k)
		}
	}
	if len(r.Dropped) > 0 {
		metrics.JoinDroppedTotal.Add(float64(len(r.Dropped)))
		logger.For("join").Info("join_dropped", "source", t.Source, "regions", r.Dropped)
	}
	return r
}

// Regions 返回连接后保留的行政区
func (r *Result) Regions() []string {
	out := make([]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Region
	}
	return out
}

// Metric 按列名查找指标定义
func (r *Result) Metric(name string) (dataset.MetricSpec, bool) {
	for _, m := range r.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return dataset.MetricSpec{}, false
}
