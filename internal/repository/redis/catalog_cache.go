package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"campus-assistant/internal/domain"
)

const (
	catalogCachePrefix = "catalog:"
	catalogCacheTTL    = 5 * time.Minute
)

// CatalogCache caches the department/subject catalog in Redis. Each entry
// is written twice: a fresh key with a TTL and a last-known-good key with
// none. When the catalog service is unreachable the stale copy keeps the
// client usable.
type CatalogCache struct {
	client *Client
}

// NewCatalogCache creates a new catalog cache
func NewCatalogCache(client *Client) *CatalogCache {
	return &CatalogCache{client: client}
}

func departmentsKey() string {
	return catalogCachePrefix + "departments"
}

func departmentsStaleKey() string {
	return catalogCachePrefix + "departments:lkg"
}

func subjectsKey(department string) string {
	return fmt.Sprintf("%ssubjects:%s", catalogCachePrefix, department)
}

func subjectsStaleKey(department string) string {
	return fmt.Sprintf("%ssubjects:lkg:%s", catalogCachePrefix, department)
}

// GetDepartments returns the fresh cached department list, or nil on miss
func (c *CatalogCache) GetDepartments(ctx context.Context) ([]domain.Department, error) {
	return getList[domain.Department](ctx, c, departmentsKey())
}

// GetDepartmentsStale returns the last-known-good department list, or nil
// if the catalog was never cached.
func (c *CatalogCache) GetDepartmentsStale(ctx context.Context) ([]domain.Department, error) {
	return getList[domain.Department](ctx, c, departmentsStaleKey())
}

// SetDepartments stores the department list under both the fresh and the
// last-known-good key.
func (c *CatalogCache) SetDepartments(ctx context.Context, departments []domain.Department) error {
	return setList(ctx, c, departmentsKey(), departmentsStaleKey(), departments)
}

// GetSubjects returns the fresh cached subject list for a department
func (c *CatalogCache) GetSubjects(ctx context.Context, department string) ([]domain.Subject, error) {
	return getList[domain.Subject](ctx, c, subjectsKey(department))
}

// GetSubjectsStale returns the last-known-good subject list for a department
func (c *CatalogCache) GetSubjectsStale(ctx context.Context, department string) ([]domain.Subject, error) {
	return getList[domain.Subject](ctx, c, subjectsStaleKey(department))
}

// SetSubjects stores a department's subject list under both keys
func (c *CatalogCache) SetSubjects(ctx context.Context, department string, subjects []domain.Subject) error {
	return setList(ctx, c, subjectsKey(department), subjectsStaleKey(department), subjects)
}

// InvalidateSubjects drops the fresh subject list for a department so the
// next read reflects a newly created subject. The last-known-good copy is
// kept; it is only ever served when the catalog is down.
func (c *CatalogCache) InvalidateSubjects(ctx context.Context, department string) error {
	return c.client.rdb.Del(ctx, subjectsKey(department)).Err()
}

// FlushFresh removes all fresh catalog keys, forcing the next reads to hit
// the catalog service. Last-known-good keys survive.
func (c *CatalogCache) FlushFresh(ctx context.Context) (int64, error) {
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, catalogCachePrefix+"*", 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		var fresh []string
		for _, key := range keys {
			if !isStaleKey(key) {
				fresh = append(fresh, key)
			}
		}

		if len(fresh) > 0 {
			count, err := c.client.rdb.Del(ctx, fresh...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

func isStaleKey(key string) bool {
	return key == departmentsStaleKey() || len(key) > len(catalogCachePrefix+"subjects:lkg:") &&
		key[:len(catalogCachePrefix+"subjects:lkg:")] == catalogCachePrefix+"subjects:lkg:"
}

func getList[T any](ctx context.Context, c *CatalogCache, key string) ([]T, error) {
	data, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached list: %w", err)
	}

	return items, nil
}

func setList[T any](ctx context.Context, c *CatalogCache, freshKey, staleKey string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal list: %w", err)
	}

	if err := c.client.rdb.Set(ctx, freshKey, data, catalogCacheTTL).Err(); err != nil {
		return err
	}
	return c.client.rdb.Set(ctx, staleKey, data, 0).Err()
}
