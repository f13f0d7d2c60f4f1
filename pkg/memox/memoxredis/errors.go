package memoxredis

import "github.com/Abraxas-365/flowx/pkg/errx"

var redisErrors = errx.NewRegistry("MEMOX_REDIS")

var (
	ErrGet    = redisErrors.Register("GET", errx.TypeExternal, "Redis get failed")
	ErrSet    = redisErrors.Register("SET", errx.TypeExternal, "Redis set failed")
	ErrDelete = redisErrors.Register("DELETE", errx.TypeExternal, "Redis delete failed")
)
