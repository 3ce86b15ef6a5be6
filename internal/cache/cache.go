package cache

import (
	"context"
	"strconv"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// Incr bumps a counter and returns the new value. Counters never expire.
	Incr(ctx context.Context, key string) (int64, error)
	// GetInt returns a counter's value, or 0 if it was never set.
	GetInt(ctx context.Context, key string) (int64, error)
}

// Keys shared between readers and the writers that invalidate them.
const (
	KeyPublicJobs    = "jobs:public"
	KeyPublicJobsGen = "jobs:public:gen"
)

func KeyJob(id string) string { return "jobs:" + id }

// KeyPublicJobsAt scopes the public listing to a generation. Writers bump
// KeyPublicJobsGen, so a listing read before the bump lands under a key no
// reader asks for again.
func KeyPublicJobsAt(gen int64) string {
	return KeyPublicJobs + ":" + strconv.FormatInt(gen, 10)
}
