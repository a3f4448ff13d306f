package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yuqie6/MindMirror/internal/ai"
	"github.com/yuqie6/MindMirror/internal/pkg/config"
	"github.com/yuqie6/MindMirror/internal/repository"
	"github.com/yuqie6/MindMirror/internal/service"
)

// Core 持有整个 CLI 共享的核心依赖
type Core struct {
	Cfg *config.Config
	DB  *repository.Database

	Repos struct {
		Skill      *repository.SkillRepository
		Session    *repository.SessionRepository
		Item       *repository.ItemRepository
		Review     *repository.ReviewRepository
		Milestone  *repository.MilestoneRepository
		Challenge  *repository.ChallengeRepository
		Obstacle   *repository.ObstacleRepository
		Evidence   *repository.EvidenceRepository
		Streak     *repository.StreakRepository
		Fact       *repository.FactRepository
		Preference *repository.PreferenceRepository
		Goal       *repository.GoalRepository
	}

	Services struct {
		Learning  *service.LearningService
		Challenge *service.ChallengeService
		Roadmap   *service.RoadmapService
		Explain   *service.ExplanationService
		Streak    *service.StreakService
		Memory    *service.MemoryService
		Chat      *service.ChatService
		FileIndex *service.FileIndexService
		Vectors   *service.VectorStore
	}

	Clients struct {
		Claude      *ai.ClaudeClient
		SiliconFlow *ai.SiliconFlowClient
	}

	shutdownOnce sync.Once
}

// NewCore 构建核心依赖
func NewCore(cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.App.LogLevel)

	db, err := repository.NewDatabase(cfg.Storage.DBPath)
	if err != nil {
		return nil, err
	}

	c := &Core{Cfg: cfg, DB: db}

	// Repos
	c.Repos.Skill = repository.NewSkillRepository(db.DB)
	c.Repos.Session = repository.NewSessionRepository(db.DB)
	c.Repos.Item = repository.NewItemRepository(db.DB)
	c.Repos.Review = repository.NewReviewRepository(db.DB)
	c.Repos.Milestone = repository.NewMilestoneRepository(db.DB)
	c.Repos.Challenge = repository.NewChallengeRepository(db.DB)
	c.Repos.Obstacle = repository.NewObstacleRepository(db.DB)
	c.Repos.Evidence = repository.NewEvidenceRepository(db.DB)
	c.Repos.Streak = repository.NewStreakRepository(db.DB)
	c.Repos.Fact = repository.NewFactRepository(db.DB)
	c.Repos.Preference = repository.NewPreferenceRepository(db.DB)
	c.Repos.Goal = repository.NewGoalRepository(db.DB)

	// Clients
	c.Clients.Claude = ai.NewClaudeClient(&ai.ClaudeConfig{
		APIKey:  cfg.AI.Claude.APIKey,
		BaseURL: cfg.AI.Claude.BaseURL,
		Model:   cfg.AI.Claude.Model,
	})
	if cfg.AI.SiliconFlow.APIKey != "" {
		c.Clients.SiliconFlow = ai.NewSiliconFlowClient(&ai.SiliconFlowConfig{
			APIKey:      cfg.AI.SiliconFlow.APIKey,
			BaseURL:     cfg.AI.SiliconFlow.BaseURL,
			EmbedModel:  cfg.AI.SiliconFlow.EmbedModel,
			RerankModel: cfg.AI.SiliconFlow.RerankModel,
		})
	}

	// 向量库可选：嵌入服务没配时照常启动，检索走关键词降级
	vectors, err := service.NewVectorStore(c.Clients.SiliconFlow, &service.VectorStoreConfig{
		StoragePath: cfg.Storage.VectorPath,
	})
	if err != nil {
		slog.Warn("向量库初始化失败，记忆检索将使用关键词模式", "error", err)
		vectors = nil
	}
	c.Services.Vectors = vectors

	// Services
	c.Services.Learning = service.NewLearningService(c.Repos.Skill, c.Repos.Session, c.Repos.Item, c.Repos.Review, c.Repos.Milestone)
	c.Services.Challenge = service.NewChallengeService(c.Repos.Challenge, c.Repos.Obstacle, c.Repos.Evidence, c.Repos.Skill)
	c.Services.Roadmap = service.NewRoadmapService(c.Repos.Skill, c.Repos.Challenge, c.Clients.Claude)
	c.Services.Explain = service.NewExplanationService(c.Repos.Skill, c.Clients.Claude, cfg.Learn.ExplanationsDir)
	c.Services.Streak = service.NewStreakService(c.Repos.Streak)
	if vectors != nil {
		c.Services.Memory = service.NewMemoryService(c.Repos.Fact, c.Repos.Preference, c.Repos.Goal, vectors)
	} else {
		c.Services.Memory = service.NewMemoryService(c.Repos.Fact, c.Repos.Preference, c.Repos.Goal, nil)
	}
	c.Services.Chat = service.NewChatService(c.Clients.Claude, c.Services.Memory, cfg.Chat.ExportDir, cfg.Chat.MaxTokens)
	c.Services.FileIndex = service.NewFileIndexService(c.Services.Memory, c.Clients.Claude)

	return c, nil
}

// Shutdown 保存对话并关闭资源，多次调用只执行一次
func (c *Core) Shutdown(ctx context.Context) error {
	if c == nil {
		return nil
	}
	var err error
	c.shutdownOnce.Do(func() {
		if c.Services.Chat != nil {
			if saveErr := c.Services.Chat.Close(ctx); saveErr != nil {
				slog.Warn("退出时保存对话失败", "error", saveErr)
			}
		}
		if c.DB != nil {
			err = c.DB.Close()
		}
	})
	return err
}

// RequireAIConfigured 检查补全服务是否已配置
func (c *Core) RequireAIConfigured() error {
	if c.Clients.Claude == nil || !c.Clients.Claude.IsConfigured() {
		return fmt.Errorf("Claude API 未配置")
	}
	return nil
}
