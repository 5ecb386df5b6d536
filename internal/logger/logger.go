// 包 logger：统一初始化与获取日志器，避免各模块重复配置；通过环境变量控制日志级别、输出格式与镜像文件
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
	logFile       *os.File
)

// ParseLevel：将 LOG_LEVEL 文本映射为 slog 级别，未识别时回退 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// New：按给定级别与格式构建日志器，写入 w
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup：初始化默认日志器
// 背景：集中化日志配置；LOG_FILE 非空时同时写入标准错误与该文件（追加模式）
// 约束：文件打开失败时仅输出到标准错误，并以 warn 记录原因
func Setup() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	lvl := ParseLevel(os.Getenv("LOG_LEVEL"))
	format := os.Getenv("LOG_FORMAT")
	var w io.Writer = os.Stderr
	var openErr error
	if p := os.Getenv("LOG_FILE"); p != "" {
		if logFile != nil {
			_ = logFile.Close()
			logFile = nil
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			openErr = err
		} else if f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err != nil {
			openErr = err
		} else {
			logFile = f
			w = io.MultiWriter(os.Stderr, f)
		}
	}
	defaultLogger = New(w, lvl, format)
	if openErr != nil {
		defaultLogger.Warn("log_file_open_error", "err", openErr)
	}
	return defaultLogger
}

// L：获取默认日志器；若未初始化则回退到 Setup
func L() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return Setup()
	}
	return l
}

// For 返回带 component 属性的子日志器
func For(component string) *slog.Logger { return L().With("component", component) }

// Close：关闭 LOG_FILE 句柄（若有）
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
