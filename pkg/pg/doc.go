// Package pg opens PostgreSQL connection pools with pgx/v5 and applies goose
// migrations shipped as an fs.FS.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if _, err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
// Connect retries with a delay that grows by RetryInterval per attempt.
// Healthcheck returns a probe suitable for a /health endpoint.
package pg
