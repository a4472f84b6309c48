// Пакет service — бизнес-логика ProAssist.
// cache.go — LRU-кэш метаданных записей с TTL.
// Обёртка над hashicorp/golang-lru/v2/expirable.
package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/UmanetAlexandru/pro-assist/internal/domain/model"
)

// Prometheus-метрики кэша.
var (
	cacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pa_cache_hits_total",
		Help: "Общее количество попаданий в LRU-кэш метаданных.",
	})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pa_cache_misses_total",
		Help: "Общее количество промахов LRU-кэша метаданных.",
	})
)

// CacheService — LRU-кэш записей телефонов с автоматическим TTL.
// Каждый экземпляр сервиса имеет собственный in-memory кэш; upsert
// того же экземпляра обновляет кэш write-through, поэтому чтение
// после записи остаётся согласованным в рамках одного процесса.
type CacheService struct {
	cache *expirable.LRU[string, *model.PhoneRecord]
}

// NewCacheService создаёт LRU-кэш с указанным максимальным размером и TTL.
func NewCacheService(maxSize int, ttl time.Duration) *CacheService {
	cache := expirable.NewLRU[string, *model.PhoneRecord](maxSize, nil, ttl)
	return &CacheService{cache: cache}
}

// Get возвращает запись из кэша по ключу.
// Возвращает (запись, true) при hit или (nil, false) при miss.
func (c *CacheService) Get(key string) (*model.PhoneRecord, bool) {
	val, ok := c.cache.Get(key)
	if ok {
		cacheHitsTotal.Inc()
		return val, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set добавляет или обновляет запись в кэше.
func (c *CacheService) Set(key string, rec *model.PhoneRecord) {
	c.cache.Add(key, rec)
}
