package cache

import (
	"net/http"

	"github.com/KOMKZ/go-yogan-chat/errcode"
)

// Cache errors: 70xxxx. None of them reach a caller of Service; they stay inside the layer.
var (
	ErrCacheMiss        = errcode.Register(errcode.New(errcode.ModuleCache, 1, "cache", "error.cache.miss", "Cache miss", http.StatusOK))
	ErrStoreUnavailable = errcode.Register(errcode.New(errcode.ModuleCache, 2, "cache", "error.cache.unavailable", "Cache store unavailable", http.StatusServiceUnavailable))
	ErrSerialize        = errcode.Register(errcode.New(errcode.ModuleCache, 4, "cache", "error.cache.serialize", "Failed to encode cache value", http.StatusInternalServerError))
	ErrDeserialize      = errcode.Register(errcode.New(errcode.ModuleCache, 5, "cache", "error.cache.deserialize", "Failed to decode cache value", http.StatusInternalServerError))
	ErrStoreGet         = errcode.Register(errcode.New(errcode.ModuleCache, 6, "cache", "error.cache.store_get", "Cache read failed", http.StatusInternalServerError))
	ErrStoreSet         = errcode.Register(errcode.New(errcode.ModuleCache, 7, "cache", "error.cache.store_set", "Cache write failed", http.StatusInternalServerError))
	ErrStoreDelete      = errcode.Register(errcode.New(errcode.ModuleCache, 8, "cache", "error.cache.store_delete", "Cache delete failed", http.StatusInternalServerError))
	ErrConfigInvalid    = errcode.Register(errcode.New(errcode.ModuleCache, 9, "cache", "error.cache.config_invalid", "Invalid cache configuration", http.StatusInternalServerError))
)
