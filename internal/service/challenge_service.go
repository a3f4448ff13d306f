package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yuqie6/MindMirror/internal/repository"
	"github.com/yuqie6/MindMirror/internal/schema"
)

// ChallengeService 实战挑战服务：挑战状态机、障碍、能力评估
type ChallengeService struct {
	challengeRepo ChallengeRepository
	obstacleRepo  ObstacleRepository
	evidenceRepo  EvidenceRepository
	skillRepo     SkillRepository
	now           func() time.Time
}

// NewChallengeService 创建挑战服务
func NewChallengeService(challengeRepo ChallengeRepository, obstacleRepo ObstacleRepository, evidenceRepo EvidenceRepository, skillRepo SkillRepository) *ChallengeService {
	return &ChallengeService{
		challengeRepo: challengeRepo,
		obstacleRepo:  obstacleRepo,
		evidenceRepo:  evidenceRepo,
		skillRepo:     skillRepo,
		now:           time.Now,
	}
}

// CreateChallenge 新建挑战
func (s *ChallengeService) CreateChallenge(ctx context.Context, c *schema.Challenge) (int64, error) {
	ok, err := s.skillRepo.Exists(ctx, c.SkillID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("技能 %d: %w", c.SkillID, repository.ErrNotFound)
	}

	c.Difficulty = schema.ParseDifficulty(string(c.Difficulty), schema.DifficultyIntermediate)
	if c.Status == "" {
		c.Status = schema.ChallengeNotStarted
	}
	if err := s.challengeRepo.Create(ctx, c); err != nil {
		return 0, err
	}
	return c.ID, nil
}

// ListChallenges 按技能/状态列出挑战
func (s *ChallengeService) ListChallenges(ctx context.Context, skillID int64, status schema.ChallengeStatus) ([]schema.Challenge, error) {
	return s.challengeRepo.List(ctx, skillID, status)
}

// StartChallenge 开始挑战；挑战不存在时不报错，返回 false
func (s *ChallengeService) StartChallenge(ctx context.Context, id int64) (bool, error) {
	c, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Warn("挑战不存在，忽略开始请求", "id", id)
			return false, nil
		}
		return false, err
	}

	now := s.now()
	c.Status = schema.ChallengeInProgress
	c.StartedAt = &now
	if err := s.challengeRepo.Update(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateChallengeProgress 更新进度
// percent 直接覆盖（允许回退），minutesDelta 累加
func (s *ChallengeService) UpdateChallengeProgress(ctx context.Context, id int64, percent, minutesDelta int, notes string) error {
	c, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	c.ProgressPercent = schema.ClampPercent(percent)
	c.TimeSpent += minutesDelta
	if notes != "" {
		c.Notes = appendNotes(c.Notes, notes)
	}
	return s.challengeRepo.Update(ctx, c)
}

// CompleteChallenge 完成挑战并记录一条技能证据
func (s *ChallengeService) CompleteChallenge(ctx context.Context, id int64, githubLink, finalNotes string) error {
	c, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	c.Status = schema.ChallengeCompleted
	c.CompletedAt = &now
	c.ProgressPercent = 100
	if githubLink != "" {
		c.GithubLink = githubLink
	}
	if finalNotes != "" {
		c.Notes = appendNotes(c.Notes, "Final notes: "+finalNotes)
	}
	if err := s.challengeRepo.Update(ctx, c); err != nil {
		return err
	}

	evidence := &schema.SkillEvidence{
		SkillID:      c.SkillID,
		ChallengeID:  c.ID,
		EvidenceType: schema.EvidenceProjectCompleted,
		Description:  "完成挑战: " + c.Title,
	}
	if err := s.evidenceRepo.Create(ctx, evidence); err != nil {
		slog.Warn("写入技能证据失败", "challenge", c.ID, "error", err)
	}
	return nil
}

// AbandonChallenge 放弃挑战
func (s *ChallengeService) AbandonChallenge(ctx context.Context, id int64, reason string) error {
	c, err := s.challengeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	c.Status = schema.ChallengeAbandoned
	if reason != "" {
		c.Notes = appendNotes(c.Notes, reason)
	}
	return s.challengeRepo.Update(ctx, c)
}

// LogObstacle 记录一个新障碍，初始状态总是 blocking
func (s *ChallengeService) LogObstacle(ctx context.Context, challengeID int64, description string) (int64, error) {
	if _, err := s.challengeRepo.GetByID(ctx, challengeID); err != nil {
		return 0, err
	}

	o := &schema.Obstacle{
		ChallengeID: challengeID,
		Description: description,
		Status:      schema.ObstacleBlocking,
	}
	if err := s.obstacleRepo.Create(ctx, o); err != nil {
		return 0, err
	}
	return o.ID, nil
}

// SolveObstacle 解决障碍并记录一条技能证据
func (s *ChallengeService) SolveObstacle(ctx context.Context, id int64, solution, insight string, timeToSolveMinutes int, resourcesUsed string) error {
	o, err := s.obstacleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	o.Status = schema.ObstacleSolved
	o.Solution = solution
	o.Insight = insight
	o.TimeToSolve = timeToSolveMinutes
	o.ResourcesUsed = resourcesUsed
	o.SolvedAt = &now
	if err := s.obstacleRepo.Update(ctx, o); err != nil {
		return err
	}

	c, err := s.challengeRepo.GetByID(ctx, o.ChallengeID)
	if err != nil {
		return err
	}
	evidence := &schema.SkillEvidence{
		SkillID:      c.SkillID,
		ChallengeID:  c.ID,
		EvidenceType: schema.EvidenceObstacleOvercome,
		Description:  firstRunes(solution, 200),
	}
	if err := s.evidenceRepo.Create(ctx, evidence); err != nil {
		slog.Warn("写入技能证据失败", "obstacle", o.ID, "error", err)
	}
	return nil
}

// SearchObstacles 跨挑战检索历史障碍及其解法
func (s *ChallengeService) SearchObstacles(ctx context.Context, keyword string) ([]repository.ObstacleHit, error) {
	return s.obstacleRepo.Search(ctx, keyword)
}

// Competency 由完成数推导的能力评估，不落库
type Competency struct {
	Level   string
	Percent int
}

// competencyForCount 完成数到能力等级的阶梯映射
func competencyForCount(completed int64) Competency {
	switch {
	case completed >= 10:
		return Competency{Level: "advanced", Percent: 90}
	case completed >= 5:
		return Competency{Level: "intermediate", Percent: 70}
	case completed >= 2:
		return Competency{Level: "beginner+", Percent: 50}
	case completed >= 1:
		return Competency{Level: "beginner", Percent: 30}
	default:
		return Competency{Level: "just_starting", Percent: 10}
	}
}

// CompetencyForSkill 根据完成的挑战数评估技能能力
func (s *ChallengeService) CompetencyForSkill(ctx context.Context, skillID int64) (*Competency, error) {
	stats, err := s.challengeRepo.StatsForSkill(ctx, skillID)
	if err != nil {
		return nil, err
	}
	c := competencyForCount(stats.Completed)
	return &c, nil
}

// Recommendation 挑战推荐及理由
type Recommendation struct {
	Challenge     *schema.Challenge
	Justification string
	Unlocks       []string
}

// GetRecommendedChallenge 推荐下一个挑战
// 在前置条件全部满足的未开始挑战中，选预计耗时最短的；并列时取 ID 最小
// 没有可推荐项时返回 (nil, nil)，调用方按"暂无推荐"处理
func (s *ChallengeService) GetRecommendedChallenge(ctx context.Context, skillID int64) (*Recommendation, error) {
	candidates, err := s.challengeRepo.List(ctx, skillID, schema.ChallengeNotStarted)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	completedTitles, err := s.challengeRepo.CompletedTitles(ctx, skillID)
	if err != nil {
		return nil, err
	}
	completed := make(map[string]struct{}, len(completedTitles))
	for _, t := range completedTitles {
		completed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	var best *schema.Challenge
	for i := range candidates {
		c := &candidates[i]
		if !prerequisitesMet(c.Prerequisites, completed) {
			continue
		}
		if best == nil || c.EstimatedHours < best.EstimatedHours ||
			(c.EstimatedHours == best.EstimatedHours && c.ID < best.ID) {
			best = c
		}
	}
	if best == nil {
		return nil, nil
	}

	// 解锁列表从其余挑战的前置声明反推，不信任落库的 unlocks 字段
	var unlocks []string
	for i := range candidates {
		c := &candidates[i]
		if c.ID == best.ID {
			continue
		}
		for _, p := range c.Prerequisites {
			if strings.EqualFold(strings.TrimSpace(p), best.Title) {
				unlocks = append(unlocks, c.Title)
				break
			}
		}
	}

	justification := fmt.Sprintf("前置条件已满足，预计 %d 小时，难度 %s", best.EstimatedHours, best.Difficulty)
	return &Recommendation{
		Challenge:     best,
		Justification: justification,
		Unlocks:       unlocks,
	}, nil
}

// prerequisitesMet 前置挑战是否全部完成（按标题匹配，不区分大小写）
func prerequisitesMet(prereqs schema.JSONArray, completed map[string]struct{}) bool {
	for _, p := range prereqs {
		key := strings.ToLower(strings.TrimSpace(p))
		if key == "" {
			continue
		}
		if _, ok := completed[key]; !ok {
			return false
		}
	}
	return true
}

// ProgressionReport 技能进阶报告
type ProgressionReport struct {
	Skill         *schema.Skill
	Competency    Competency
	Challenges    *repository.ChallengeStats
	Obstacles     *repository.ObstacleStats
	EvidenceCount int64
}

// GetProgressionReport 汇总技能的挑战进展与能力评估
func (s *ChallengeService) GetProgressionReport(ctx context.Context, skillID int64) (*ProgressionReport, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return nil, err
	}

	cStats, err := s.challengeRepo.StatsForSkill(ctx, skillID)
	if err != nil {
		return nil, err
	}
	oStats, err := s.obstacleRepo.StatsForSkill(ctx, skillID)
	if err != nil {
		return nil, err
	}
	evidence, err := s.evidenceRepo.CountForSkill(ctx, skillID)
	if err != nil {
		return nil, err
	}

	return &ProgressionReport{
		Skill:         skill,
		Competency:    competencyForCount(cStats.Completed),
		Challenges:    cStats,
		Obstacles:     oStats,
		EvidenceCount: evidence,
	}, nil
}
