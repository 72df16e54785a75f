package services

import (
	"fmt"

	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// Recommendation is one actionable suggestion derived from the analytics
// aggregates. The same builders back the admin recommendation tools and
// the scheduled insight routine.
type Recommendation struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func buildClientRecommendations(metrics *repository.ClientMetrics) []Recommendation {
	var recs []Recommendation

	if metrics.DeclinedKeywords > metrics.ImprovedKeywords {
		recs = append(recs, Recommendation{
			Title:       "Rankings are slipping",
			Description: fmt.Sprintf("%d keywords declined against %d improved for %s. Review the SEO strategy and refresh the worst-affected pages.", metrics.DeclinedKeywords, metrics.ImprovedKeywords, metrics.ClientName),
			Priority:    "high",
		})
	}

	if metrics.ContentPublished == 0 && metrics.ContentDraft > 0 {
		recs = append(recs, Recommendation{
			Title:       "Drafts are not shipping",
			Description: fmt.Sprintf("%s has %d drafts and nothing published. Unblock the review pipeline.", metrics.ClientName, metrics.ContentDraft),
			Priority:    "medium",
		})
	}

	if metrics.TasksOpen > 0 && metrics.TasksDone == 0 {
		recs = append(recs, Recommendation{
			Title:       "Task backlog is stalled",
			Description: fmt.Sprintf("All %d tasks for %s are still open. Check assignee capacity.", metrics.TasksOpen, metrics.ClientName),
			Priority:    "medium",
		})
	}

	if metrics.AvgPosition > 20 {
		recs = append(recs, Recommendation{
			Title:       "Weak average ranking",
			Description: fmt.Sprintf("%s averages position %.0f across tracked keywords. Consider a content gap analysis.", metrics.ClientName, metrics.AvgPosition),
			Priority:    "low",
		})
	}

	return recs
}

func buildPortfolioRecommendations(overview *repository.PortfolioOverview, lowPerformers []repository.ClientPerformance) []Recommendation {
	var recs []Recommendation

	if overview.ContentThisMonth == 0 && overview.ActiveClients > 0 {
		recs = append(recs, Recommendation{
			Title:       "No content published this month",
			Description: fmt.Sprintf("%d active clients and zero published pieces so far this month. Review the production schedule.", overview.ActiveClients),
			Priority:    "high",
		})
	}

	if overview.AvgPortfolioRank > 15 {
		recs = append(recs, Recommendation{
			Title:       "Portfolio rankings trending weak",
			Description: fmt.Sprintf("The portfolio-wide average keyword position is %.0f. Prioritize the clients dragging the average down.", overview.AvgPortfolioRank),
			Priority:    "medium",
		})
	}

	for _, client := range lowPerformers {
		if client.DeclinedKeywords == 0 {
			continue
		}
		recs = append(recs, Recommendation{
			Title:       fmt.Sprintf("Check in on %s", client.ClientName),
			Description: fmt.Sprintf("%d keywords declined and %d pieces published this month.", client.DeclinedKeywords, client.ContentThisMonth),
			Priority:    "medium",
		})
	}

	return recs
}
