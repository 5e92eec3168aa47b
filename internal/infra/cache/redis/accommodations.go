package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	domainacc "stayinn/internal/domain/accommodations"
)

// AccommodationCache decorates an accommodation repository with a
// read-through cache for single-record lookups. Writes invalidate.
type AccommodationCache struct {
	Inner  domainacc.Repository
	Client *redis.Client
	TTL    time.Duration
}

func NewAccommodationCache(inner domainacc.Repository, client *redis.Client, ttl time.Duration) *AccommodationCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AccommodationCache{Inner: inner, Client: client, TTL: ttl}
}

func (c *AccommodationCache) ByID(ctx context.Context, id domainacc.ID) (*domainacc.Accommodation, error) {
	key := cacheKey(id)
	// A cache miss or outage falls through to the store.
	if data, err := c.Client.Get(ctx, key).Bytes(); err == nil {
		var entry cachedAccommodation
		if err := json.Unmarshal(data, &entry); err == nil {
			return entry.toAggregate()
		}
	}
	acc, err := c.Inner.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(newCachedAccommodation(acc)); err == nil {
		_ = c.Client.Set(ctx, key, data, c.TTL).Err()
	}
	return acc, nil
}

func (c *AccommodationCache) ListAll(ctx context.Context) ([]*domainacc.Accommodation, error) {
	return c.Inner.ListAll(ctx)
}

func (c *AccommodationCache) ListByHost(ctx context.Context, host domainacc.HostID) ([]*domainacc.Accommodation, error) {
	return c.Inner.ListByHost(ctx, host)
}

func (c *AccommodationCache) Search(ctx context.Context, params domainacc.SearchParams) ([]*domainacc.Accommodation, error) {
	return c.Inner.Search(ctx, params)
}

func (c *AccommodationCache) Save(ctx context.Context, acc *domainacc.Accommodation) error {
	if err := c.Inner.Save(ctx, acc); err != nil {
		return err
	}
	_ = c.Client.Del(ctx, cacheKey(acc.ID)).Err()
	return nil
}

func (c *AccommodationCache) Delete(ctx context.Context, id domainacc.ID) error {
	if err := c.Inner.Delete(ctx, id); err != nil {
		return err
	}
	_ = c.Client.Del(ctx, cacheKey(id)).Err()
	return nil
}

func cacheKey(id domainacc.ID) string {
	return "accommodation:" + string(id)
}

type cachedAccommodation struct {
	ID        string `json:"id"`
	HostID    string `json:"host_id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Amenities []int  `json:"amenities"`
	MinGuests int    `json:"min_guests"`
	MaxGuests int    `json:"max_guests"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

func newCachedAccommodation(acc *domainacc.Accommodation) cachedAccommodation {
	return cachedAccommodation{
		ID:        string(acc.ID),
		HostID:    string(acc.Host),
		Name:      acc.Name,
		Location:  acc.Location,
		Amenities: domainacc.AmenitiesAsInts(acc.Amenities),
		MinGuests: acc.MinGuests,
		MaxGuests: acc.MaxGuests,
		CreatedAt: acc.CreatedAt.UnixMilli(),
		UpdatedAt: acc.UpdatedAt.UnixMilli(),
	}
}

func (e cachedAccommodation) toAggregate() (*domainacc.Accommodation, error) {
	amenities, err := domainacc.AmenitiesFromInts(e.Amenities)
	if err != nil {
		return nil, err
	}
	return &domainacc.Accommodation{
		ID:        domainacc.ID(e.ID),
		Host:      domainacc.HostID(e.HostID),
		Name:      e.Name,
		Location:  e.Location,
		Amenities: amenities,
		MinGuests: e.MinGuests,
		MaxGuests: e.MaxGuests,
		CreatedAt: time.UnixMilli(e.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(e.UpdatedAt).UTC(),
	}, nil
}

var _ domainacc.Repository = (*AccommodationCache)(nil)
