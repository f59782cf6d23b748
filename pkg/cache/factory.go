package cache

import "fmt"

// Cache backend types.
const (
	TypeLocal = "local"
	TypeRedis = "redis"
)

// New builds the backend named in the config. An empty type means local;
// unknown types are a configuration error.
func New(cfg Config) (Cache, error) {
	switch cfg.Type {
	case TypeRedis:
		return NewRedisCache(cfg.Redis)
	case TypeLocal, "":
		return NewLocalCache(cfg.Local), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
