package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	mongooptions "go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fwojciec/metachat"
	mcjson "github.com/fwojciec/metachat/json"
	"github.com/fwojciec/metachat/memory"
	"github.com/fwojciec/metachat/mongo"
	"github.com/fwojciec/metachat/redis"
)

// resolveStore constructs the session store selected by flags. The returned
// func releases any client connections; it is a no-op for local stores.
func resolveStore(ctx context.Context, opts *options) (metachat.SessionStore, func(), error) {
	noop := func() {}
	switch opts.store {
	case "json":
		return mcjson.NewStore(opts.dataDir), noop, nil
	case "memory":
		return memory.NewStore(), noop, nil
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: opts.redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close() //nolint:errcheck
			return nil, nil, fmt.Errorf("redis %s: %w", opts.redisAddr, err)
		}
		return redis.NewStore(client), func() { client.Close() }, nil //nolint:errcheck
	case "mongo":
		client, err := mongodriver.Connect(mongooptions.Client().ApplyURI(opts.mongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("mongo %s: %w", opts.mongoURI, err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(ctx) //nolint:errcheck
			return nil, nil, fmt.Errorf("mongo %s: %w", opts.mongoURI, err)
		}
		disconnect := func() { client.Disconnect(context.Background()) } //nolint:errcheck
		return mongo.NewStore(client.Database(opts.mongoDB)), disconnect, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q: must be \"json\", \"memory\", \"redis\" or \"mongo\"", opts.store)
	}
}
