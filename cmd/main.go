// 程序入口：读取配置、加载边界，逐页生成图表描述（JSON）与静态图片
package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sido-dash/internal/config"
	"sido-dash/internal/dataset"
	"sido-dash/internal/logger"
	"sido-dash/internal/metrics"
	"sido-dash/internal/page"
	"sido-dash/internal/render"
	"sido-dash/internal/utils"
	"sido-dash/internal/view"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	code := run()
	logger.Close()
	os.Exit(code)
}

// run 返回进程退出码；单页失败不改变退出码
func run() int {
	l := logger.Setup()
	l.Debug("log_init_ok")

	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		return 1
	}
	l.Debug("config_data_dir", "dir", cfg.DataDir, "pages", cfg.Names())

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
			rc = nil
		} else {
			l.Info("redis_ping_ok")
		}
	}
	cache := dataset.NewCache(
		utils.EnvInt("DATASET_CACHE_CAPACITY", 16),
		rc,
		time.Duration(utils.EnvInt("DATASET_CACHE_TTL_S", 3600))*time.Second,
	)

	d, err := page.Open(cfg, cache)
	if err != nil {
		l.Error("boundary_error", "err", err)
		return 1
	}

	outDir := utils.EnvString("OUT_DIR", "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		l.Error("out_dir_error", "dir", outDir, "err", err)
		return 1
	}

	modes, err := view.ParseModes(utils.EnvString("VIEW_MODE", ""))
	if err != nil {
		l.Error("config_view_mode_error", "err", err)
		return 1
	}
	names := d.Pages()
	if p := utils.EnvString("PAGE", ""); p != "" {
		names = strings.Split(p, ",")
	}
	sel := page.Selection{
		Metric: utils.EnvString("METRIC", ""),
		Age:    utils.EnvString("AGE", ""),
		Gender: utils.EnvString("GENDER", ""),
	}

	ctx := context.Background()
	failed := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		for _, m := range modes {
			sel.Mode = m
			res := d.Render(ctx, name, sel)
			if res.Err != nil {
				// 单页失败不影响其他页
				failed++
				continue
			}
			if len(res.Dropped) > 0 || len(res.Uncovered) > 0 {
				l.Info("page_regions", "page", name, "dropped", res.Dropped, "uncovered", res.Uncovered)
			}
			base := filepath.Join(outDir, name+"_"+strings.ToLower(string(res.Mode)))
			if err := writeJSON(base+".json", res); err != nil {
				l.Error("spec_write_error", "page", name, "err", err)
				failed++
				continue
			}
			if err := render.Save(base+".png", res.Spec, d.Boundaries(), 0, 0); err != nil {
				l.Error("render_error", "page", name, "err", err)
				failed++
				continue
			}
			l.Info("page_written", "page", name, "mode", string(res.Mode), "path", base+".png")
		}
	}

	if err := metrics.WriteTextfile(utils.EnvString("METRICS_TEXTFILE", "")); err != nil {
		l.Error("metrics_write_error", "err", err)
	}
	l.Info("done", "pages", len(names), "failed", failed, "cached_tables", cache.Len())
	return 0
}

type specFile struct {
	Page      string          `json:"page"`
	Title     string          `json:"title,omitempty"`
	Spec      *view.ChartSpec `json:"spec"`
	Table     *page.TableView `json:"table,omitempty"`
	Dropped   []string        `json:"dropped,omitempty"`
	Uncovered []string        `json:"uncovered,omitempty"`
}

func writeJSON(path string, res page.Result) error {
	b, err := json.MarshalIndent(specFile{
		Page:      res.Page,
		Title:     res.Title,
		Spec:      res.Spec,
		Table:     res.Table,
		Dropped:   res.Dropped,
		Uncovered: res.Uncovered,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
