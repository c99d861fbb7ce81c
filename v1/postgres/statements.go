package postgres

import (
	"context"
	"time"

	"github.com/lifecoach/std/v1/database"
)

// Prepare implements database.Client. pgx already caches prepared statements
// per connection, so the handle only validates the template once and then
// sends it through the pool on every call.
func (p *Postgres) Prepare(ctx context.Context, query string) (stmt database.Statement, err error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() {
		database.Observe(ctx, p.observer, database.EnginePostgres, "prepare", query, start, err, 0, nil)
	}()

	if _, err = p.compile(query); err != nil {
		return nil, err
	}
	return database.NewTemplateStatement(p, query), nil
}
