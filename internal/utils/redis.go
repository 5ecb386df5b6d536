// 包 utils：Redis 连接工具，统一环境变量读取与可选 DB 选择；供数据集共享缓存层使用
package utils

import (
	"sido-dash/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedis：使用地址、密码与 DB 编号打开 Redis 客户端
// 背景：保留直接传入参数的能力，用于测试与手工注入场景；addr 为空时返回 nil
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	if db < 0 {
		db = 0
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

// OpenRedisFromEnv：从环境变量打开 Redis 客户端，支持 REDIS_DB 选择
// 约束：未配置 REDIS_HOST 时返回 nil（数据集缓存仅使用进程内层）；REDIS_DB 解析失败时回退到 0
func OpenRedisFromEnv() *redis.Client {
	host := EnvString("REDIS_HOST", "")
	if host == "" {
		return nil
	}
	addr := host + ":" + EnvString("REDIS_PORT", "6379")
	db := EnvInt("REDIS_DB", 0)
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return OpenRedis(addr, EnvString("REDIS_PASS", ""), db)
}
