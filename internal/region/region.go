// 包 region：行政区（시도）名称的封闭集合与规范化规则，供加载、连接、选图各层共用
package region

import "strings"

// Aggregate：统计表中的合计行标记，不属于任何行政区
const Aggregate = "합계"

// Provinces：17 个一级行政区名称（顺序与统计表惯例一致）
// 约束：名称须与边界数据的键属性在去除首尾空白后逐字相等；不做别名或模糊匹配
var Provinces = []string{
	"서울특별시",
	"부산광역시",
	"대구광역시",
	"인천광역시",
	"광주광역시",
	"대전광역시",
	"울산광역시",
	"세종특별자치시",
	"경기도",
	"강원도",
	"충청북도",
	"충청남도",
	"전라북도",
	"전라남도",
	"경상북도",
	"경상남도",
	"제주특별자치도",
}

var known = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Provinces))
	for _, p := range Provinces {
		m[p] = struct{}{}
	}
	return m
}()

// Normalize：唯一允许的规范化操作，去除首尾空白
func Normalize(name string) string { return strings.TrimSpace(name) }

// IsProvince：判断规范化后的名称是否属于封闭集合
func IsProvince(name string) bool {
	_, ok := known[Normalize(name)]
	return ok
}

// IsAggregate 报告该名称是否为合计行
func IsAggregate(name string) bool { return Normalize(name) == Aggregate }
