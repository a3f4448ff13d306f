package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yuqie6/MindMirror/internal/schema"
)

// RoadmapService 挑战路线图生成：让模型产出结构化挑战并落库
type RoadmapService struct {
	skillRepo     SkillRepository
	challengeRepo ChallengeRepository
	generator     Generator
}

// NewRoadmapService 创建路线图服务
func NewRoadmapService(skillRepo SkillRepository, challengeRepo ChallengeRepository, generator Generator) *RoadmapService {
	return &RoadmapService{
		skillRepo:     skillRepo,
		challengeRepo: challengeRepo,
		generator:     generator,
	}
}

const roadmapSystemPrompt = "你是一位务实的编程导师，擅长把学习目标拆成由易到难、动手为主的实战挑战。"

// buildRoadmapPrompt 要求模型按固定字段格式输出，便于解析
func buildRoadmapPrompt(skill *schema.Skill, currentLevel, goals, timeline string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "为学习「%s」设计一份实战挑战路线图。\n\n", skill.Name)
	fmt.Fprintf(&sb, "当前水平: %s\n", currentLevel)
	fmt.Fprintf(&sb, "学习目标: %s\n", goals)
	fmt.Fprintf(&sb, "时间安排: %s\n\n", timeline)
	sb.WriteString("请给出 5 到 8 个由易到难的挑战，每个挑战严格使用以下格式输出：\n\n")
	sb.WriteString("CHALLENGE: 挑战标题\n")
	sb.WriteString("DIFFICULTY: beginner/intermediate/advanced\n")
	sb.WriteString("HOURS: 预计小时数（整数）\n")
	sb.WriteString("DESCRIPTION: 一两句话说明要做什么\n")
	sb.WriteString("SKILLS: 逗号分隔的技能点\n")
	sb.WriteString("PREREQUISITES: 逗号分隔的前置挑战标题，没有则写 none\n")
	return sb.String()
}

// GenerateRoadmap 生成路线图并写入挑战表，返回成功创建的数量
// 模型输出不合格式时只会创建 0 条，不报错
func (s *RoadmapService) GenerateRoadmap(ctx context.Context, skillID int64, currentLevel, goals, timeline string) (int, error) {
	skill, err := s.skillRepo.GetByID(ctx, skillID)
	if err != nil {
		return 0, err
	}
	if !s.generator.IsConfigured() {
		return 0, fmt.Errorf("补全服务未配置")
	}

	prompt := buildRoadmapPrompt(skill, currentLevel, goals, timeline)
	raw, err := s.generator.Generate(ctx, prompt, roadmapSystemPrompt, 4000)
	if err != nil {
		return 0, fmt.Errorf("生成路线图失败: %w", err)
	}

	drafts := ParseChallenges(raw)
	if len(drafts) == 0 {
		slog.Warn("模型输出中没有解析出任何挑战", "skill", skill.Name)
	}

	created := 0
	for _, d := range drafts {
		c := &schema.Challenge{
			Title:          d.Title,
			Description:    d.Description,
			SkillID:        skillID,
			Difficulty:     d.Difficulty,
			EstimatedHours: d.EstimatedHours,
			SkillsTaught:   schema.JSONArray(d.SkillsTaught),
			Prerequisites:  schema.JSONArray(d.Prerequisites),
			Unlocks:        schema.JSONArray(unlocksFor(d.Title, drafts)),
			Status:         schema.ChallengeNotStarted,
		}
		if err := s.challengeRepo.Create(ctx, c); err != nil {
			slog.Warn("写入挑战失败，跳过", "title", d.Title, "error", err)
			continue
		}
		created++
	}

	// 一条都没建成时不动技能元数据，避免把垃圾输出当成已有路线图
	if created > 0 {
		skill.CurrentLevel = currentLevel
		skill.Goals = goals
		skill.Timeline = timeline
		skill.RoadmapGenerated = true
		if err := s.skillRepo.Update(ctx, skill); err != nil {
			return created, err
		}
	}

	return created, nil
}

// unlocksFor 批次内把本挑战列为前置的其他挑战标题
func unlocksFor(title string, drafts []ChallengeDraft) []string {
	var unlocks []string
	for _, d := range drafts {
		if d.Title == title {
			continue
		}
		for _, p := range d.Prerequisites {
			if strings.EqualFold(strings.TrimSpace(p), title) {
				unlocks = append(unlocks, d.Title)
				break
			}
		}
	}
	return unlocks
}
