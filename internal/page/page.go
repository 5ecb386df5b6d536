// 包 page：页面级编排（加载 → 连接 → 选图），错误以结果形式返回给宿主而非中断进程
package page

import (
	"context"
	"errors"
	"fmt"
	"sido-dash/internal/boundary"
	"sido-dash/internal/config"
	"sido-dash/internal/dataset"
	"sido-dash/internal/join"
	"sido-dash/internal/logger"
	"sido-dash/internal/metrics"
	"sido-dash/internal/view"
	"strconv"
	"strings"
	"sync"
)

var ErrUnknownPage = errors.New("unknown page")

// Selection：一次渲染的交互选择，由宿主持有并显式传入
// Metric 非空时直接使用；否则按页面的 metric_template 以 Age/Gender 拼出列名
type Selection struct {
	Mode   view.Mode
	Metric string
	Age    string
	Gender string
}

// TableView：页面附带的数据表（行政区 + 所选指标）
type TableView struct {
	Columns []string
	Rows    [][]string
}

// Result：一次渲染的输出；Err 非空时 Spec 为空，由宿主在图表位置展示错误
type Result struct {
	Page      string
	Title     string
	Mode      view.Mode
	Metric    string
	Spec      *view.ChartSpec
	Table     *TableView
	Dropped   []string
	Uncovered []string
	Err       error
}

// Dashboard：持有只读的边界集合与数据集缓存
type Dashboard struct {
	cfg    *config.Config
	bounds *boundary.Collection
	cache  *dataset.Cache

	mu     sync.Mutex
	inline map[string]*dataset.Table
}

// Open：加载边界集合（进程内仅一次）并构建 Dashboard
func Open(cfg *config.Config, cache *dataset.Cache) (*Dashboard, error) {
	c, err := boundary.Load(cfg.ResolvePath(cfg.Boundary.Path), cfg.Boundary.Key)
	if err != nil {
		return nil, err
	}
	return New(cfg, c, cache), nil
}

func New(cfg *config.Config, bounds *boundary.Collection, cache *dataset.Cache) *Dashboard {
	if cache == nil {
		cache = dataset.NewCache(0, nil, 0)
	}
	return &Dashboard{cfg: cfg, bounds: bounds, cache: cache, inline: make(map[string]*dataset.Table)}
}

func (d *Dashboard) Pages() []string { return d.cfg.Names() }

func (d *Dashboard) Boundaries() *boundary.Collection { return d.bounds }

// Table：读取页面的数据表（文件经缓存，内联数据构建一次后复用）
func (d *Dashboard) Table(ctx context.Context, name string) (*dataset.Table, error) {
	p, ok := d.cfg.Page(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPage, name)
	}
	if len(p.Table.Rows) > 0 {
		d.mu.Lock()
		defer d.mu.Unlock()
		if t, ok := d.inline[name]; ok {
			return t, nil
		}
		t, err := dataset.Build(name+":inline", p.Table.Rows, p.Table.Options())
		if err != nil {
			return nil, err
		}
		d.inline[name] = t
		return t, nil
	}
	return d.cache.Load(ctx, d.cfg.ResolvePath(p.Table.Path), p.Table.Options())
}

// Prepare：加载并与边界连接
func (d *Dashboard) Prepare(ctx context.Context, name string) (*join.Result, error) {
	t, err := d.Table(ctx, name)
	if err != nil {
		return nil, err
	}
	return join.Join(t, d.bounds), nil
}

// ResolveMetric：由页面配置与选择得到指标列名
// 约束：模板页面的年龄段/性别须在配置列表内；列是否存在由 view.Select 校验
func ResolveMetric(p config.PageConfig, sel Selection) (string, error) {
	if sel.Metric != "" {
		return sel.Metric, nil
	}
	if p.MetricTemplate == "" {
		return p.Metric, nil
	}
	age, gender := sel.Age, sel.Gender
	if age == "" && len(p.AgeGroups) > 0 {
		age = p.AgeGroups[0]
	}
	if gender == "" && len(p.Genders) > 0 {
		gender = p.Genders[0]
	}
	col := strings.NewReplacer("{gender}", gender, "{age}", age).Replace(p.MetricTemplate)
	if len(p.AgeGroups) > 0 && !contains(p.AgeGroups, age) {
		return "", &view.SchemaError{Metric: col, Available: p.AgeGroups, Err: fmt.Errorf("%w: age group %q", view.ErrUnknownMetric, age)}
	}
	if len(p.Genders) > 0 && !contains(p.Genders, gender) {
		return "", &view.SchemaError{Metric: col, Available: p.Genders, Err: fmt.Errorf("%w: gender %q", view.ErrUnknownMetric, gender)}
	}
	return col, nil
}

// 文档注释：渲染一页
// 背景：每次交互（切换模式、改选年龄段/性别）都重新调用；加载失败与列缺失都只影响本页，错误写入 Result.Err。
// 约束：Mode 为空时取页面默认模式（再缺省为 MAP）；连接未命中仅记录在 Dropped/Uncovered。
func (d *Dashboard) Render(ctx context.Context, name string, sel Selection) Result {
	res := Result{Page: name}
	p, ok := d.cfg.Page(name)
	if !ok {
		res.Err = fmt.Errorf("%w: %q", ErrUnknownPage, name)
		return res
	}
	res.Title = p.Title
	res.Mode = sel.Mode
	if res.Mode == "" {
		res.Mode = view.ModeMap
		if p.DefaultMode != "" {
			if m, err := view.ParseMode(p.DefaultMode); err == nil {
				res.Mode = m
			}
		}
	}
	l := logger.For("page").With("page", name, "mode", string(res.Mode))
	fail := func(err error) Result {
		res.Err = err
		metrics.RendersTotal.WithLabelValues(name, string(res.Mode), "error").Inc()
		l.Error("page_render_error", "err", err)
		return res
	}

	metric, err := ResolveMetric(p, sel)
	if err != nil {
		return fail(err)
	}
	res.Metric = metric
	r, err := d.Prepare(ctx, name)
	if err != nil {
		return fail(err)
	}
	res.Dropped, res.Uncovered = r.Dropped, r.Uncovered
	spec, err := view.Select(res.Mode, r, metric, p.ViewOptions(d.bounds.FeatureIDKey()))
	if err != nil {
		return fail(err)
	}
	if p.Label != "" {
		spec.Label = p.Label
	}
	res.Spec = spec
	if p.ShowTable {
		res.Table = tableView(p.Table.RegionColumn, spec)
	}
	metrics.RendersTotal.WithLabelValues(name, string(res.Mode), "ok").Inc()
	l.Debug("page_render_ok", "metric", metric, "points", len(spec.Points))
	return res
}

func tableView(regionColumn string, spec *view.ChartSpec) *TableView {
	tv := &TableView{Columns: []string{regionColumn, spec.Label}}
	for _, pt := range spec.Points {
		tv.Rows = append(tv.Rows, []string{pt.Region, strconv.FormatFloat(pt.Value, 'f', -1, 64)})
	}
	return tv
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
