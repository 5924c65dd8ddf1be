// Package backfill fetches related records only when a primary list
// references them and the target store does not hold them yet.
package backfill

import (
	"context"

	"github.com/carelink/patient-portal/internal/observability/metrics"
	"github.com/carelink/patient-portal/pkg/logging"
)

// Resolver reports which references have no cached record under the
// dual-key rule. Entity stores satisfy this directly.
type Resolver interface {
	Missing(refs []string) []string
}

// FetchFunc issues one get-by-owner fetch for a missing reference.
type FetchFunc func(ctx context.Context, ref string) error

// Coordinator ensures every doctor (or other related) reference in a
// primary list resolves against its store. It is stateless: running it
// again after the store changed issues fetches only for what is still
// missing, so repeated passes converge. It deliberately does not track
// in-flight fetches; two rapid passes may fetch the same reference twice,
// which the store's upsert merge absorbs.
type Coordinator struct {
	entity   string
	resolver Resolver
	fetch    FetchFunc
	logger   *logging.Logger
	metrics  *metrics.CacheMetrics
}

// New returns a coordinator backfilling entity records via fetch.
func New(entity string, resolver Resolver, fetch FetchFunc, logger *logging.Logger, m *metrics.CacheMetrics) *Coordinator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Coordinator{entity: entity, resolver: resolver, fetch: fetch, logger: logger, metrics: m}
}

// Ensure issues one fetch per distinct unresolved reference in refs and
// returns the references it fetched. A fetch failure is logged and counted
// but never aborts the remaining backfills; the consuming view renders a
// fallback label for references that stay unresolved.
func (c *Coordinator) Ensure(ctx context.Context, refs []string) []string {
	if len(refs) == 0 {
		return nil
	}

	missing := c.resolver.Missing(refs)
	if len(missing) == 0 {
		c.metrics.ObserveBackfill(c.entity, "resolved")
		return nil
	}

	issued := make([]string, 0, len(missing))
	for _, ref := range missing {
		if err := c.fetch(ctx, ref); err != nil {
			c.logger.Warn("backfill fetch failed",
				"entity", c.entity,
				"ref", ref,
				"error", err,
			)
			c.metrics.ObserveBackfill(c.entity, "failed")
			continue
		}
		c.metrics.ObserveBackfill(c.entity, "issued")
		issued = append(issued, ref)
	}
	return issued
}
