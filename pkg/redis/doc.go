// Package redis connects to Redis with github.com/redis/go-redis/v9.
//
//	var cfg redis.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Connect pings until the server answers; Healthcheck wraps the same ping
// for a /health endpoint.
package redis
