package topics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jdeboer/debatkamer/internal/domain"
	"github.com/jdeboer/debatkamer/internal/safety"
	"github.com/jdeboer/debatkamer/internal/store"
)

// seedTopics are always available, even without a supplier. The first three
// have dedicated rebuttal pools in the coach.
var seedTopics = []domain.Topic{
	{
		Title:       "Sociale media vanaf 16 jaar verplicht?",
		Description: "Moet er een minimumleeftijd van 16 jaar komen voor sociale media?",
		Category:    "technologie",
	},
	{
		Title:       "Schooluniformen op alle middelbare scholen",
		Description: "Moeten alle middelbare scholen een schooluniform invoeren?",
		Category:    "onderwijs",
	},
	{
		Title:       "Huiswerk afschaffen",
		Description: "Moet huiswerk op de middelbare school worden afgeschaft?",
		Category:    "onderwijs",
	},
	{
		Title:       "Statiegeld op alle plastic verpakkingen",
		Description: "Moet er statiegeld komen op alle plastic verpakkingen om zwerfafval tegen te gaan?",
		Category:    "milieu",
	},
	{
		Title:       "Verplicht sporten op school",
		Description: "Moeten leerlingen elke schooldag verplicht een uur sporten?",
		Category:    "gezondheid",
	},
}

// Catalog maintains the stored topic list, combining seed topics with
// supplier-generated ones.
type Catalog struct {
	repo     store.Repository
	supplier Supplier // nil when no supplier is configured
}

// NewCatalog creates a catalog. supplier may be nil, in which case only
// the seed topics are served.
func NewCatalog(repo store.Repository, supplier Supplier) *Catalog {
	return &Catalog{repo: repo, supplier: supplier}
}

// Seed writes the built-in topics to the store. Upserts by title, so
// repeated startups do not duplicate them.
func (c *Catalog) Seed(ctx context.Context) error {
	for i := range seedTopics {
		topic := seedTopics[i]
		topic.ID = uuid.NewString()
		if err := c.repo.UpsertTopic(ctx, &topic); err != nil {
			return fmt.Errorf("seed topic %q: %w", topic.Title, err)
		}
	}
	return nil
}

// List returns all stored topics.
func (c *Catalog) List(ctx context.Context) ([]*domain.Topic, error) {
	return c.repo.ListTopics(ctx)
}

// Get returns one stored topic, or (nil, nil) when unknown.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.Topic, error) {
	return c.repo.GetTopic(ctx, id)
}

// Refresh pulls count fresh topics from the supplier and stores them.
// Topics whose title or description trips the safety filter are stored
// flagged as sensitive so sessions on them go straight to the safety
// message. Returns the number of topics stored.
func (c *Catalog) Refresh(ctx context.Context, count int) (int, error) {
	if c.supplier == nil {
		return 0, fmt.Errorf("topics: no supplier configured")
	}
	if count < 1 {
		count = 1
	}
	if count > 10 {
		count = 10
	}

	generated, err := c.supplier.GenerateTopics(ctx, count)
	if err != nil {
		return 0, fmt.Errorf("generate topics: %w", err)
	}

	stored := 0
	for _, g := range generated {
		topic := domain.Topic{
			ID:          uuid.NewString(),
			Title:       g.Title,
			Description: g.Description,
			Category:    g.Category,
			IsSensitive: safety.IsSensitive(g.Title) || safety.IsSensitive(g.Description),
		}
		if err := c.repo.UpsertTopic(ctx, &topic); err != nil {
			slog.Warn("Failed to store generated topic", "title", g.Title, "error", err)
			continue
		}
		stored++
	}
	return stored, nil
}

// StartRefreshWorker runs a background goroutine that periodically refreshes
// the catalog from the supplier. No-op when no supplier is configured.
func (c *Catalog) StartRefreshWorker(ctx context.Context, interval time.Duration, count int) {
	if c.supplier == nil {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Topic refresh worker started", "interval", interval, "count", count)

		for {
			select {
			case <-ticker.C:
				stored, err := c.Refresh(ctx, count)
				if err != nil {
					slog.Error("Topic refresh failed", "error", err)
					continue
				}
				slog.Info("Topic catalog refreshed", "stored", stored)
			case <-ctx.Done():
				slog.Info("Topic refresh worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
