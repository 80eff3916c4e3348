package xlru

import "errors"

var (
	// ErrInvalidSize 表示缓存容量无效。
	ErrInvalidSize = errors.New("xlru: size must be greater than 0")

	// ErrSizeExceedsMax 表示缓存容量超过上限 (16,777,216)。
	ErrSizeExceedsMax = errors.New("xlru: size must not exceed 16777216")

	// ErrInvalidTTL 表示 TTL 为负值。
	ErrInvalidTTL = errors.New("xlru: TTL must not be negative")
)
