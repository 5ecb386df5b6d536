// 行政区核对工具：逐页加载数据表并与边界集合比对，输出被过滤与未覆盖的行政区
// 用法：region-check [page...]；STRICT=true 时存在被过滤行政区即返回非零
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sido-dash/internal/config"
	"sido-dash/internal/logger"
	"sido-dash/internal/page"
	"sido-dash/internal/region"
	"sido-dash/internal/utils"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	code := run(os.Args[1:])
	logger.Close()
	os.Exit(code)
}

func run(names []string) int {
	l := logger.Setup()

	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		return 1
	}
	d, err := page.Open(cfg, nil)
	if err != nil {
		l.Error("boundary_error", "err", err)
		return 1
	}
	var missing []string
	for _, p := range region.Provinces {
		if !d.Boundaries().Has(p) {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		l.Warn("boundary_missing_provinces", "names", missing)
	}

	if len(names) == 0 {
		names = d.Pages()
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PAGE\tRECORDS\tDROPPED\tUNCOVERED")
	loadErrs, dropped := 0, 0
	for _, name := range names {
		r, err := d.Prepare(context.Background(), name)
		if err != nil {
			l.Error("page_load_error", "page", name, "err", err)
			fmt.Fprintf(tw, "%s\t-\t-\t-\n", name)
			loadErrs++
			continue
		}
		dropped += len(r.Dropped)
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", name, len(r.Records), list(r.Dropped), list(r.Uncovered))
	}
	_ = tw.Flush()

	if loadErrs > 0 {
		return 1
	}
	if dropped > 0 && utils.EnvBool("STRICT", false) {
		return 2
	}
	return 0
}

func list(s []string) string {
	if len(s) == 0 {
		return "-"
	}
	return strings.Join(s, ",")
}
