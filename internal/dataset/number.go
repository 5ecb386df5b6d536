package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseCount：去除千分位逗号后按十进制整数解析
// 约束：空串、小数与其它非数字字符一律报错，不以 0 代替
func ParseCount(s string) (int64, error) {
	t := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if t == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadNumber)
	}
	n, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, s)
	}
	return n, nil
}

// ParseMetric：去除千分位逗号与末尾百分号后解析为浮点数
func ParseMetric(s string) (float64, error) {
	t := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	t = strings.TrimSpace(strings.TrimSuffix(t, "%"))
	if t == "" {
		return 0, fmt.Errorf("%w: empty", ErrBadNumber)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadNumber, s)
	}
	return f, nil
}

func parseByKind(k Kind, s string) (float64, error) {
	if k == KindFloat {
		return ParseMetric(s)
	}
	n, err := ParseCount(s)
	return float64(n), err
}
