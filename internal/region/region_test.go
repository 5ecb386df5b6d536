package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvincesClosedSet(t *testing.T) {
	assert.Len(t, Provinces, 17)
	seen := map[string]bool{}
	for _, p := range Provinces {
		assert.False(t, seen[p], "duplicate %s", p)
		seen[p] = true
		assert.True(t, IsProvince(p))
	}
}

func TestIsProvinceTrimsWhitespace(t *testing.T) {
	assert.True(t, IsProvince("  서울특별시 "))
	assert.True(t, IsProvince("\t제주특별자치도\n"))
	assert.False(t, IsProvince("서울"))
	assert.False(t, IsProvince("서울 특별시"))
	assert.False(t, IsProvince(""))
}

func TestAggregate(t *testing.T) {
	assert.True(t, IsAggregate(" 합계 "))
	assert.False(t, IsProvince(Aggregate))
	assert.False(t, IsAggregate("경기도"))
}
