package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
)

// DatabaseRetriever fetches database metadata; *notionclient.Client satisfies it.
type DatabaseRetriever interface {
	RetrieveDatabase(ctx context.Context, databaseID string) (*notionclient.Database, error)
}

// Collection names one configured Notion database.
type Collection struct {
	Name       string
	DatabaseID string
}

// UpstreamProbe checks that every configured collection can be reached with
// the configured credential.
type UpstreamProbe struct {
	client      DatabaseRetriever
	collections []Collection
	logger      *slog.Logger
}

// NewUpstreamProbe creates a probe over the given collections.
func NewUpstreamProbe(client DatabaseRetriever, collections []Collection, logger *slog.Logger) *UpstreamProbe {
	return &UpstreamProbe{client: client, collections: collections, logger: logger}
}

// Check retrieves every collection concurrently. The statuses are always
// returned in configuration order; the error is the first failure observed.
func (p *UpstreamProbe) Check(ctx context.Context) ([]domain.CollectionStatus, error) {
	statuses := make([]domain.CollectionStatus, len(p.collections))
	g, gctx := errgroup.WithContext(ctx)

	for i, c := range p.collections {
		i, c := i, c
		statuses[i] = domain.CollectionStatus{Collection: c.Name, DatabaseID: c.DatabaseID}
		g.Go(func() error {
			if _, err := p.client.RetrieveDatabase(gctx, c.DatabaseID); err != nil {
				return domain.NewExternalAPIError(fmt.Sprintf("Failed to reach %s collection in Notion", c.Name), err)
			}
			statuses[i].Reachable = true
			return nil
		})
	}

	return statuses, g.Wait()
}

// Run performs one check and logs the outcome. It is the scheduled job body.
func (p *UpstreamProbe) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	statuses, err := p.Check(ctx)
	if err != nil {
		p.logger.Warn("upstream probe failed", "error", err, "duration", time.Since(start))
		return
	}
	p.logger.Info("upstream probe succeeded", "collections", len(statuses), "duration", time.Since(start))
}
