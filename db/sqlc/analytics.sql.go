package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

const analyticsIncrementGamesStarted = `
INSERT INTO server_analytics (server_ip, games_started)
VALUES ($1, 1)
ON CONFLICT (server_ip)
DO UPDATE SET games_started = server_analytics.games_started + 1
`

func (q *Queries) AnalyticsIncrementGamesStarted(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementGamesStarted, serverIp)
	return err
}

const analyticsIncrementGamesCompleted = `
INSERT INTO server_analytics (server_ip, games_completed)
VALUES ($1, 1)
ON CONFLICT (server_ip)
DO UPDATE SET games_completed = server_analytics.games_completed + 1
`

func (q *Queries) AnalyticsIncrementGamesCompleted(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementGamesCompleted, serverIp)
	return err
}

const analyticsIncrementDisconnects = `
INSERT INTO server_analytics (server_ip, disconnects)
VALUES ($1, 1)
ON CONFLICT (server_ip)
DO UPDATE SET disconnects = server_analytics.disconnects + 1
`

func (q *Queries) AnalyticsIncrementDisconnects(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementDisconnects, serverIp)
	return err
}

const analyticsGetGamesStartedCount = `
SELECT games_started FROM server_analytics WHERE server_ip = $1
`

func (q *Queries) AnalyticsGetGamesStartedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, analyticsGetGamesStartedCount, serverIp)
	var gamesStarted int64
	err := row.Scan(&gamesStarted)
	return gamesStarted, err
}

const analyticsGetGamesCompletedCount = `
SELECT games_completed FROM server_analytics WHERE server_ip = $1
`

func (q *Queries) AnalyticsGetGamesCompletedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, analyticsGetGamesCompletedCount, serverIp)
	var gamesCompleted int64
	err := row.Scan(&gamesCompleted)
	return gamesCompleted, err
}
