package dataset

import (
	"container/list"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"sido-dash/internal/logger"
	"sido-dash/internal/metrics"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// 文档注释：进程内 LRU（数据集键 → 已加载表）
// 背景：页面每次交互都会重新准备数据，源文件在进程生命周期内不变，命中后直接复用同一实例。
// 约束：ttl 为 0 表示永不过期；容量满时淘汰最久未使用的表。
type lru struct {
	mu   sync.Mutex
	cap  int
	ttl  time.Duration
	lst  *list.List
	dict map[string]*list.Element
}

type entry struct {
	k   string
	v   *Table
	exp time.Time
}

func newLRU(capacity int, ttl time.Duration) *lru {
	if capacity <= 0 {
		capacity = 64
	}
	return &lru{cap: capacity, ttl: ttl, lst: list.New(), dict: make(map[string]*list.Element)}
}

func (c *lru) get(k string) (*Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.dict[k]
	if !ok {
		return nil, false
	}
	it := e.Value.(entry)
	if c.ttl > 0 && time.Now().After(it.exp) {
		c.lst.Remove(e)
		delete(c.dict, k)
		return nil, false
	}
	c.lst.MoveToFront(e)
	return it.v, true
}

func (c *lru) set(k string, v *Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it := entry{k: k, v: v, exp: time.Now().Add(c.ttl)}
	if e, ok := c.dict[k]; ok {
		e.Value = it
		c.lst.MoveToFront(e)
		return
	}
	c.dict[k] = c.lst.PushFront(it)
	for c.lst.Len() > c.cap {
		back := c.lst.Back()
		delete(c.dict, back.Value.(entry).k)
		c.lst.Remove(back)
	}
}

func (c *lru) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lst.Len()
}

// Cache：两级数据集缓存（进程内 LRU → 可选 Redis）
// 背景：多个进程（如渲染与校验 CLI）可通过 Redis 共享已清洗的表；未配置 Redis 时仅使用进程内层。
// 约束：加载失败不缓存；Redis 读写失败只记录日志并回退到文件加载。
type Cache struct {
	mem      *lru
	rc       *redis.Client
	redisTTL time.Duration
	load     func(string, Options) (*Table, error)
}

// NewCache：capacity 为进程内容量；rc 可为 nil；redisTTL<=0 时 Redis 键不过期
func NewCache(capacity int, rc *redis.Client, redisTTL time.Duration) *Cache {
	if redisTTL < 0 {
		redisTTL = 0
	}
	return &Cache{mem: newLRU(capacity, 0), rc: rc, redisTTL: redisTTL, load: Load}
}

// Key：路径、文件版本与加载参数的组合键
// 约束：文件版本为修改时间与大小，文件改动后旧键（包括 Redis 中不过期的键）不再命中
func Key(path string, opts Options) string {
	b, _ := json.Marshal(opts)
	sum := sha1.Sum(b)
	return path + "|" + fileStamp(path) + "|" + hex.EncodeToString(sum[:8])
}

// fileStamp：读取失败时为空，错误留给加载阶段报告
func fileStamp(path string) string {
	fi, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return strconv.FormatInt(fi.ModTime().UnixNano(), 36) + "-" + strconv.FormatInt(fi.Size(), 36)
}

func redisKey(key string) string { return "sidodash:dataset:" + key }

// Load：按键依次查询内存与 Redis，均未命中时读取文件并回填两级缓存
func (c *Cache) Load(ctx context.Context, path string, opts Options) (*Table, error) {
	key := Key(path, opts)
	if t, ok := c.mem.get(key); ok {
		metrics.CacheHitsTotal.WithLabelValues("memory").Inc()
		return t, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("memory").Inc()
	l := logger.For("dataset")
	rkey := redisKey(key)
	if c.rc != nil {
		if s, err := c.rc.Get(ctx, rkey).Result(); err == nil && s != "" {
			var t Table
			if e := json.Unmarshal([]byte(s), &t); e == nil {
				metrics.CacheHitsTotal.WithLabelValues("redis").Inc()
				c.mem.set(key, &t)
				return &t, nil
			} else {
				l.Warn("dataset_cache_decode_error", "key", rkey, "err", e)
			}
		} else if err != nil && err != redis.Nil {
			l.Warn("dataset_cache_redis_error", "op", "get", "err", err)
		}
		metrics.CacheMissesTotal.WithLabelValues("redis").Inc()
	}
	t, err := c.load(path, opts)
	if err != nil {
		return nil, err
	}
	c.mem.set(key, t)
	if c.rc != nil {
		if b, err := json.Marshal(t); err == nil {
			if err := c.rc.Set(ctx, rkey, b, c.redisTTL).Err(); err != nil {
				l.Warn("dataset_cache_redis_error", "op", "set", "err", err)
			}
		}
	}
	return t, nil
}

// Len 返回进程内层的条目数
func (c *Cache) Len() int { return c.mem.len() }
