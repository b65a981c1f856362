package sqlc

import (
	"context"
	"time"

	"github.com/sqlc-dev/pqtype"
)

// Upper bound for any single analytics query.
const QuerierCtxTimeout = time.Second * 5

type Querier interface {
	AnalyticsIncrementGamesStarted(ctx context.Context, serverIp pqtype.Inet) error
	AnalyticsIncrementGamesCompleted(ctx context.Context, serverIp pqtype.Inet) error
	AnalyticsIncrementDisconnects(ctx context.Context, serverIp pqtype.Inet) error
	AnalyticsGetGamesStartedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsGetGamesCompletedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
}

var _ Querier = (*Queries)(nil)
