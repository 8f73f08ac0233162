package geo

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hanish-rishen/RideShare/internal/models"
)

// RedisGeo implements Locator using Redis GEO commands. Positions land in a
// single geo set keyed by request id; labels and rider metadata live in a
// hash per request so Nearby can rebuild full records.
type RedisGeo struct {
	client *redis.Client
	key    string
	ctx    context.Context
}

func NewRedisGeo(addr, password, key string) *RedisGeo {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &RedisGeo{client: c, key: key, ctx: context.Background()}
}

func (r *RedisGeo) Upsert(req models.RideRequest) {
	_, _ = r.client.GeoAdd(r.ctx, r.key, &redis.GeoLocation{Longitude: req.Loc.Lon, Latitude: req.Loc.Lat, Name: req.ID}).Result()
	_ = r.client.HSet(r.ctx, metaKey(req.ID), map[string]interface{}{
		"rider_id":    req.RiderID,
		"origin":      req.Origin,
		"destination": req.Destination,
		"created_at":  req.CreatedAt.Format(time.RFC3339),
	}).Err()
}

func (r *RedisGeo) Remove(id string) {
	_ = r.client.ZRem(r.ctx, r.key, id).Err()
	_ = r.client.Del(r.ctx, metaKey(id)).Err()
}

func (r *RedisGeo) Nearby(lat, lon, radiusKm float64, limit int) []models.RideRequest {
	res, err := r.client.GeoRadius(r.ctx, r.key, lon, lat, &redis.GeoRadiusQuery{Radius: radiusKm, Unit: "km", WithCoord: true, WithDist: true, Count: limit, Sort: "ASC"}).Result()
	if err != nil {
		return nil
	}
	out := make([]models.RideRequest, 0, len(res))
	for _, g := range res {
		req := models.RideRequest{ID: g.Name}
		req.Loc.Lat = g.Latitude
		req.Loc.Lon = g.Longitude
		if m, err := r.client.HGetAll(r.ctx, metaKey(g.Name)).Result(); err == nil {
			req.RiderID = m["rider_id"]
			req.Origin = m["origin"]
			req.Destination = m["destination"]
			if t, err := time.Parse(time.RFC3339, m["created_at"]); err == nil {
				req.CreatedAt = t
			}
		}
		out = append(out, req)
	}
	return out
}

func metaKey(id string) string { return "request:meta:" + id }
