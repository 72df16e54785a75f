package services

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/config"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/providers"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/worker"
)

// Repositories bundles the storage dependencies of the service layer
type Repositories struct {
	Conversations repository.ConversationRepository
	Messages      repository.MessageRepository
	Summaries     repository.SummaryRepository
	Knowledge     repository.KnowledgeRepository
	Clients       repository.ClientRepository
	Insights      repository.InsightRepository
	Analytics     repository.AnalyticsRepository
}

// Services holds all service instances
type Services struct {
	Chat      *ChatService
	AdminChat *AdminChatService
	Insights  *InsightService
	Cache     *CacheService
	Queue     *worker.Queue
}

// NewServices creates all service instances and starts the background queue
func NewServices(repos Repositories, provider providers.Provider, cache *CacheService, cfg config.ChatConfig, logger *logrus.Logger) *Services {
	queue := worker.NewQueue(2, 64, 3, time.Second, logger)
	queue.Start()

	assembler := NewContextAssembler(repos.Messages, repos.Summaries, cfg)
	summarizer := NewSummarizer(repos.Messages, repos.Summaries, provider, cfg, logger)
	knowledge := NewKnowledgeService(repos.Knowledge, provider, cfg, logger)

	chat := NewChatService(
		repos.Conversations,
		repos.Messages,
		repos.Clients,
		repos.Knowledge,
		assembler,
		summarizer,
		knowledge,
		provider,
		queue,
		cfg,
		logger,
	)

	router := NewAdminToolRouter(repos.Clients, repos.Analytics, cache, logger)
	adminChat := NewAdminChatService(chat, router, logger)
	insights := NewInsightService(repos.Insights, repos.Clients, repos.Analytics, logger)

	return &Services{
		Chat:      chat,
		AdminChat: adminChat,
		Insights:  insights,
		Cache:     cache,
		Queue:     queue,
	}
}
