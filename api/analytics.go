package api

import (
	"context"
	"net"

	"github.com/sqlc-dev/pqtype"

	"github.com/seastrikehq/seastrike-backend/db/sqlc"
)

// Analytics rows are keyed by the server's outward-facing IP so
// counters from several instances land in separate rows. Counting is
// fire-and-forget: a failed increment is logged and never fatal to a
// game.

func (s *Server) countGameStarted() {
	s.withQuerier(func(ctx context.Context, q sqlc.Querier) error {
		return q.AnalyticsIncrementGamesStarted(ctx, s.ipnet)
	})
}

func (s *Server) countGameCompleted() {
	s.withQuerier(func(ctx context.Context, q sqlc.Querier) error {
		return q.AnalyticsIncrementGamesCompleted(ctx, s.ipnet)
	})
}

func (s *Server) countDisconnect() {
	s.withQuerier(func(ctx context.Context, q sqlc.Querier) error {
		return q.AnalyticsIncrementDisconnects(ctx, s.ipnet)
	})
}

func (s *Server) withQuerier(fn func(context.Context, sqlc.Querier) error) {
	if s.querier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()
	if err := fn(ctx, s.querier); err != nil {
		s.logger.Warnf("analytics update failed: %v", err)
	}
}

// serverIpNet finds the first non-loopback IPv4 of an up interface,
// falling back to loopback when the host has none (CI, tests).
func serverIpNet() pqtype.Inet {
	fallback := pqtype.Inet{
		IPNet: net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(32, 32)},
		Valid: true,
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return fallback
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ipnet.IP.To4() != nil && !ipnet.IP.IsLoopback() {
				return pqtype.Inet{IPNet: *ipnet, Valid: true}
			}
		}
	}

	return fallback
}
