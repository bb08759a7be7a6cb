package vendorlist

import (
	"fmt"
	"os"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/coocood/freecache"

	"github.com/prebid/go-tcf/api"
	"github.com/prebid/go-tcf/config"
	"github.com/prebid/go-tcf/errortypes"
	"github.com/prebid/go-tcf/logger"
	"github.com/prebid/go-tcf/metrics"
)

// freecache rejects entries larger than 1/1024 of its size, so lists are stored in chunks.
const (
	entryFraction  = 1024
	entryHeadroom  = 64
	latestVersion  = 0
	chunkKeyFormat = "gvl/%d/%d"
	countKeyFormat = "gvl/%d"
)

// Loader returns the raw JSON of a vendor list version. Version 0 asks for the latest list.
type Loader func(version uint16) ([]byte, error)

// FileLoader serves the single vendor list stored at path.
// It answers version 0 and the version the file holds, and nothing else.
func FileLoader(path string) Loader {
	return func(version uint16) ([]byte, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read vendor list %s: %w", path, err)
		}
		if version != latestVersion && ParseLazily(data).VendorListVersion() != version {
			return nil, &errortypes.VendorListNotFound{Version: version}
		}
		return data, nil
	}
}

// Cache keeps raw vendor lists in a fixed size freecache, so repeated lookups of a version skip
// both the loader and validation. It is safe for concurrent use.
type Cache struct {
	lru            *freecache.Cache
	chunkSize      int
	ttlSeconds     int
	includeDeleted bool
	loader         Loader
	clock          clock.Clock
	metricsEngine  metrics.MetricsEngine
}

// clockTimer drives freecache expiry from a clock.Clock.
type clockTimer struct {
	clock clock.Clock
}

func (t clockTimer) Now() uint32 {
	return uint32(t.clock.Now().Unix())
}

// NewCache builds a Cache sized and aged by cfg.
func NewCache(cfg config.VendorList, loader Loader, metricsEngine metrics.MetricsEngine, clk clock.Clock) *Cache {
	if metricsEngine == nil {
		metricsEngine = &metrics.NilMetricsEngine{}
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Cache{
		lru:            freecache.NewCacheCustomTimer(cfg.CacheSizeBytes, clockTimer{clock: clk}),
		chunkSize:      cfg.CacheSizeBytes/entryFraction - entryHeadroom,
		ttlSeconds:     cfg.TTLSeconds,
		includeDeleted: cfg.IncludeDeleted,
		loader:         loader,
		clock:          clk,
		metricsEngine:  metricsEngine,
	}
}

// VendorList returns the given version of the Global Vendor List. Version 0 returns the latest.
// Unless the cache was configured to include them, deleted vendors are hidden.
func (c *Cache) VendorList(version uint16) (api.VendorList, error) {
	if data, ok := c.load(version); ok {
		c.metricsEngine.RecordVendorListCacheResult(metrics.CacheHit, 1)
		return c.view(ParseLazily(data)), nil
	}
	c.metricsEngine.RecordVendorListCacheResult(metrics.CacheMiss, 1)

	data, err := c.loader(version)
	if err != nil {
		return nil, err
	}
	list, err := ParseEagerly(data)
	if err != nil {
		logger.Errorf("Vendor list version %d is malformed: %v", version, err)
		return nil, fmt.Errorf("vendor list version %d: %w", version, err)
	}
	if version != latestVersion && list.VendorListVersion() != version {
		return nil, &errortypes.VendorListNotFound{Version: version}
	}

	c.store(version, data)
	return c.view(list), nil
}

func (c *Cache) view(list api.VendorList) api.VendorList {
	if c.includeDeleted {
		return list
	}
	return Active(list, c.clock)
}

func (c *Cache) store(version uint16, data []byte) {
	count := (len(data) + c.chunkSize - 1) / c.chunkSize
	for i := 0; i < count; i++ {
		end := (i + 1) * c.chunkSize
		if end > len(data) {
			end = len(data)
		}
		if err := c.lru.Set(chunkKey(version, i), data[i*c.chunkSize:end], c.ttlSeconds); err != nil {
			logger.Warnf("Vendor list version %d was not cached: %v", version, err)
			return
		}
	}
	// The count is written last, so a reader never sees a partially stored list.
	if err := c.lru.Set(countKey(version), []byte(strconv.Itoa(count)), c.ttlSeconds); err != nil {
		logger.Warnf("Vendor list version %d was not cached: %v", version, err)
	}
}

func (c *Cache) load(version uint16) ([]byte, bool) {
	rawCount, err := c.lru.Get(countKey(version))
	if err != nil {
		return nil, false
	}
	count, err := strconv.Atoi(string(rawCount))
	if err != nil {
		return nil, false
	}
	data := make([]byte, 0, count*c.chunkSize)
	for i := 0; i < count; i++ {
		chunk, err := c.lru.Get(chunkKey(version, i))
		if err != nil {
			return nil, false
		}
		data = append(data, chunk...)
	}
	return data, true
}

func chunkKey(version uint16, index int) []byte {
	return []byte(fmt.Sprintf(chunkKeyFormat, version, index))
}

func countKey(version uint16) []byte {
	return []byte(fmt.Sprintf(countKeyFormat, version))
}

// LoadCMPList reads and parses the CMP list stored at path.
func LoadCMPList(path string) (*CMPList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cmp list %s: %w", path, err)
	}
	return ParseCMPList(data)
}
