package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

const (
	InsightTypePortfolio = "portfolio_recommendation"
	InsightTypeClient    = "client_recommendation"
)

// insightClientLimit caps how many clients one automated run covers
const insightClientLimit = 50

const insightListLimit = 100

// InsightService persists automated recommendations as admin insights.
// Inserts are idempotent per (type, client, title); re-running the routine
// only adds what is new.
type InsightService struct {
	insightRepo repository.InsightRepository
	clientRepo  repository.ClientRepository
	analytics   repository.AnalyticsRepository
	logger      *logrus.Logger
}

// NewInsightService creates a new insight service
func NewInsightService(insightRepo repository.InsightRepository, clientRepo repository.ClientRepository, analytics repository.AnalyticsRepository, logger *logrus.Logger) *InsightService {
	return &InsightService{
		insightRepo: insightRepo,
		clientRepo:  clientRepo,
		analytics:   analytics,
		logger:      logger,
	}
}

// GenerateAutomatedRecommendations computes portfolio-level and per-client
// recommendations and stores them as insights. Per-client failures are
// logged and skipped so one bad client doesn't starve the rest of the run.
func (s *InsightService) GenerateAutomatedRecommendations(ctx context.Context) error {
	overview, err := s.analytics.PortfolioOverview(ctx)
	if err != nil {
		return fmt.Errorf("failed to aggregate portfolio: %w", err)
	}

	lowPerformers, err := s.analytics.LowPerformingClients(ctx, performanceResultLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch low performers: %w", err)
	}

	for _, rec := range buildPortfolioRecommendations(overview, lowPerformers) {
		data, _ := json.Marshal(overview)
		insight := &repository.AdminInsight{
			InsightType: InsightTypePortfolio,
			Title:       rec.Title,
			Description: rec.Description,
			Priority:    rec.Priority,
			Data:        data,
		}
		if err := s.insightRepo.Create(ctx, insight); err != nil {
			return fmt.Errorf("failed to save portfolio insight: %w", err)
		}
	}

	clients, err := s.clientRepo.List(ctx, insightClientLimit)
	if err != nil {
		return fmt.Errorf("failed to list clients: %w", err)
	}

	for _, client := range clients {
		metrics, err := s.analytics.ClientMetrics(ctx, client.ID)
		if err != nil {
			s.logger.WithError(err).WithField("client_id", client.ID).Warn("skipping client metrics")
			continue
		}

		data, _ := json.Marshal(metrics)
		clientID := client.ID
		for _, rec := range buildClientRecommendations(metrics) {
			insight := &repository.AdminInsight{
				InsightType: InsightTypeClient,
				ClientID:    &clientID,
				Title:       rec.Title,
				Description: rec.Description,
				Priority:    rec.Priority,
				Data:        data,
			}
			if err := s.insightRepo.Create(ctx, insight); err != nil {
				s.logger.WithError(err).WithField("client_id", client.ID).Warn("failed to save client insight")
			}
		}
	}

	return nil
}

// ListInsights returns the most recent insights, optionally filtered by type
func (s *InsightService) ListInsights(ctx context.Context, insightType string) ([]repository.AdminInsight, error) {
	return s.insightRepo.ListRecent(ctx, insightType, insightListLimit)
}

// RunPeriodically generates recommendations on a fixed interval until the
// context is cancelled. Started from main as a goroutine.
func (s *InsightService) RunPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.GenerateAutomatedRecommendations(ctx); err != nil {
				s.logger.WithError(err).Error("automated recommendation run failed")
			}
		}
	}
}
