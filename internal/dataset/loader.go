package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sido-dash/internal/logger"
	"sido-dash/internal/metrics"
	"sido-dash/internal/region"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Options：一次加载的全部参数；同一路径不同 Options 视为不同数据集
type Options struct {
	// SkipRows：表头之前跳过的行数（统计报表常带标题与说明行）
	SkipRows int `json:"skip_rows"`
	// Columns：按位置重命名表头；非空时长度必须与表头一致
	Columns      []string     `json:"columns,omitempty"`
	RegionColumn string       `json:"region_column"`
	Metrics      []MetricSpec `json:"metrics,omitempty"`
	// AllMetrics：除行政区列外的全部列都作为 AllMetricsKind 指标
	AllMetrics     bool   `json:"all_metrics,omitempty"`
	AllMetricsKind Kind   `json:"all_metrics_kind,omitempty"`
	Encoding       string `json:"encoding,omitempty"`
	Delimiter      rune   `json:"delimiter,omitempty"`
	Sheet          string `json:"sheet,omitempty"`
}

// 文档注释：读取表格文件并清洗为行政区记录
// 背景：支持 .csv/.tsv/.txt（逗号或制表符分隔）与 .xlsx；编码支持 UTF-8（去 BOM）与 EUC-KR/CP949。
// 约束：文件缺失、表头异常、数值解析失败均返回 *LoadError，不做默认值替换；合计行、空行与封闭集合外的名称被丢弃。
func Load(path string, opts Options) (*Table, error) {
	t0 := time.Now()
	rows, err := readRows(path, opts)
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	t, err := Build(path, rows, opts)
	metrics.DatasetLoadDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.DatasetLoadsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.DatasetLoadsTotal.WithLabelValues("ok").Inc()
	logger.For("dataset").Info("dataset_load_ok", "path", path, "records", len(t.Records), "metrics", len(t.Metrics), "ms", time.Since(t0).Milliseconds())
	return t, nil
}

func readRows(path string, opts Options) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" || ext == ".xlsm" {
		return readXLSX(path, opts)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: "open", Err: err}
	}
	defer f.Close()
	r, err := decoded(f, opts.Encoding)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: "open", Err: err}
	}
	br := stripBOM(bufio.NewReader(r))
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, &LoadError{Path: path, Stage: "header", Err: fmt.Errorf("%w: file ends within %d skipped rows", ErrMalformedHeader, opts.SkipRows)}
			}
			return nil, &LoadError{Path: path, Stage: "open", Err: err}
		}
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = delimiterFor(ext, opts.Delimiter)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, &LoadError{Path: path, Stage: "row", Err: err}
	}
	return rows, nil
}

func readXLSX(path string, opts Options) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: "open", Err: err}
	}
	defer f.Close()
	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &LoadError{Path: path, Stage: "open", Err: err}
	}
	if opts.SkipRows >= len(rows) {
		return nil, &LoadError{Path: path, Stage: "header", Err: fmt.Errorf("%w: sheet %q ends within %d skipped rows", ErrMalformedHeader, sheet, opts.SkipRows)}
	}
	return rows[opts.SkipRows:], nil
}

// decoded：按声明的编码包装读取器；未识别的编码直接报错，避免乱码混入行政区名
func decoded(r io.Reader, enc string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "", "utf-8", "utf8", "utf-8-sig":
		return r, nil
	case "euc-kr", "euckr", "cp949", "ms949", "uhc":
		return transform.NewReader(r, korean.EUCKR.NewDecoder()), nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", enc)
}

func stripBOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

func delimiterFor(ext string, d rune) rune {
	if d != 0 {
		return d
	}
	if ext == ".tsv" {
		return '\t'
	}
	return ','
}

// 文档注释：由原始行（首行为表头）构建表
// 背景：文件加载与内联静态数据共用同一清洗规则。
// 约束：rows 不被修改；错误以 *LoadError 返回，source 作为 Path。
func Build(source string, rows [][]string, opts Options) (*Table, error) {
	if len(rows) == 0 {
		return nil, &LoadError{Path: source, Stage: "header", Err: fmt.Errorf("%w: no header row", ErrMalformedHeader)}
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}
	if len(opts.Columns) > 0 {
		if len(opts.Columns) != len(header) {
			return nil, &LoadError{Path: source, Stage: "header", Err: fmt.Errorf("%w: %d columns in file, %d names given", ErrMalformedHeader, len(header), len(opts.Columns))}
		}
		header = append([]string(nil), opts.Columns...)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		if h == "" {
			continue
		}
		if _, dup := index[h]; dup {
			return nil, &LoadError{Path: source, Stage: "header", Column: h, Err: fmt.Errorf("%w: duplicate column", ErrMalformedHeader)}
		}
		index[h] = i
	}
	regionIdx, ok := index[opts.RegionColumn]
	if !ok {
		return nil, &LoadError{Path: source, Stage: "header", Column: opts.RegionColumn, Err: ErrMissingColumn}
	}
	specs, err := resolveMetrics(header, index, regionIdx, opts)
	if err != nil {
		return nil, &LoadError{Path: source, Stage: "header", Column: err.column, Err: err.err}
	}
	idx := make([]int, len(specs))
	for i, m := range specs {
		idx[i] = index[m.Name]
	}

	l := logger.For("dataset")
	t := &Table{Source: source, RegionColumn: opts.RegionColumn, Metrics: specs}
	seen := make(map[string]int)
	for n, row := range rows[1:] {
		rowNo := n + 1
		name := ""
		if regionIdx < len(row) {
			name = region.Normalize(row[regionIdx])
		}
		switch {
		case name == "":
			metrics.DatasetRowsDroppedTotal.WithLabelValues("missing").Inc()
			continue
		case region.IsAggregate(name):
			metrics.DatasetRowsDroppedTotal.WithLabelValues("aggregate").Inc()
			continue
		case !region.IsProvince(name):
			metrics.DatasetRowsDroppedTotal.WithLabelValues("unknown").Inc()
			l.Debug("dataset_row_dropped", "source", source, "row", rowNo, "region", name)
			continue
		}
		if first, dup := seen[name]; dup {
			return nil, &LoadError{Path: source, Stage: "row", Row: rowNo, Err: fmt.Errorf("%w: %s (first at row %d)", ErrDuplicateRegion, name, first)}
		}
		seen[name] = rowNo
		rec := Record{Region: name, Values: make(map[string]float64, len(specs))}
		for i, m := range specs {
			cell := ""
			if idx[i] < len(row) {
				cell = row[idx[i]]
			}
			v, err := parseByKind(m.Kind, cell)
			if err != nil {
				return nil, &LoadError{Path: source, Stage: "parse", Row: rowNo, Column: m.Name, Err: err}
			}
			rec.Values[m.Name] = v
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

type columnErr struct {
	column string
	err    error
}

func resolveMetrics(header []string, index map[string]int, regionIdx int, opts Options) ([]MetricSpec, *columnErr) {
	if opts.AllMetrics {
		kind := opts.AllMetricsKind
		if kind == "" {
			kind = KindInt
		}
		var out []MetricSpec
		for i, h := range header {
			if i == regionIdx || h == "" {
				continue
			}
			out = append(out, MetricSpec{Name: h, Kind: kind})
		}
		return out, nil
	}
	out := make([]MetricSpec, 0, len(opts.Metrics))
	for _, m := range opts.Metrics {
		if _, ok := index[m.Name]; !ok {
			return nil, &columnErr{column: m.Name, err: ErrMissingColumn}
		}
		if m.Kind == "" {
			m.Kind = KindInt
		}
		out = append(out, m)
	}
	return out, nil
}
