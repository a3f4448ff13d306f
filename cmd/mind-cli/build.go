package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuqie6/MindMirror/internal/schema"
	"github.com/yuqie6/MindMirror/internal/service"
)

// buildCmd 实战挑战追踪
func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "实战挑战（用项目证明能力）",
	}

	cmd.AddCommand(
		buildAddCmd(),
		buildListCmd(),
		buildStartCmd(),
		buildProgressCmd(),
		buildCompleteCmd(),
		buildAbandonCmd(),
		buildObstacleCmd(),
		buildLibraryCmd(),
		buildRecommendCmd(),
		buildReportCmd(),
		buildStreakCmd(),
	)
	return cmd
}

func buildAddCmd() *cobra.Command {
	var description, difficulty string
	var hours int
	var skills, prereqs []string

	cmd := &cobra.Command{
		Use:   "add [技能ID] [标题]",
		Short: "添加挑战",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			c := &schema.Challenge{
				Title:          strings.Join(args[1:], " "),
				Description:    description,
				SkillID:        parseID(args[0]),
				Difficulty:     schema.Difficulty(difficulty),
				EstimatedHours: hours,
				SkillsTaught:   schema.JSONArray(skills),
				Prerequisites:  schema.JSONArray(prereqs),
			}
			id, err := core.Services.Challenge.CreateChallenge(cmd.Context(), c)
			if err != nil {
				fmt.Printf("❌ 添加失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 挑战已添加 (#%d): %s\n", id, c.Title)
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "挑战描述")
	cmd.Flags().StringVar(&difficulty, "difficulty", "intermediate", "难度 (beginner/intermediate/advanced)")
	cmd.Flags().IntVar(&hours, "hours", 5, "预计耗时（小时）")
	cmd.Flags().StringSliceVar(&skills, "skills", nil, "练到的技能点")
	cmd.Flags().StringSliceVar(&prereqs, "prereq", nil, "前置挑战标题")

	return cmd
}

func buildListCmd() *cobra.Command {
	var skillID int64
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "列出挑战",
		Run: func(cmd *cobra.Command, args []string) {
			challenges, err := core.Services.Challenge.ListChallenges(cmd.Context(), skillID, schema.ChallengeStatus(status))
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			if len(challenges) == 0 {
				fmt.Println("📭 暂无挑战，使用 'mind build add' 或 'mind roadmap' 创建")
				return
			}
			fmt.Printf("🛠 挑战 (%d)\n", len(challenges))
			for _, c := range challenges {
				fmt.Printf("  %s #%d %s [%s, ~%dh] %d%%\n",
					statusIcon(c.Status), c.ID, c.Title, c.Difficulty, c.EstimatedHours, c.ProgressPercent)
			}
		},
	}

	cmd.Flags().Int64Var(&skillID, "skill", 0, "只看某个技能（0=全部）")
	cmd.Flags().StringVar(&status, "status", "", "按状态过滤 (not_started/in_progress/completed/abandoned)")

	return cmd
}

func buildStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start [挑战ID]",
		Short: "开始挑战",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			ok, err := core.Services.Challenge.StartChallenge(cmd.Context(), id)
			if err != nil {
				fmt.Printf("❌ 开始失败: %v\n", err)
				os.Exit(1)
			}
			if !ok {
				fmt.Printf("⚠️  挑战 #%d 不存在\n", id)
				return
			}
			fmt.Printf("🚀 挑战 #%d 已开始，加油\n", id)
		},
	}
}

func buildProgressCmd() *cobra.Command {
	var percent, minutes int
	var notes string

	cmd := &cobra.Command{
		Use:   "progress [挑战ID]",
		Short: "更新挑战进度",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			if err := core.Services.Challenge.UpdateChallengeProgress(cmd.Context(), id, percent, minutes, notes); err != nil {
				fmt.Printf("❌ 更新失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("📈 挑战 #%d 进度已更新为 %d%%\n", id, schema.ClampPercent(percent))
		},
	}

	cmd.Flags().IntVarP(&percent, "percent", "p", 0, "完成百分比 0-100")
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "本次投入分钟数")
	cmd.Flags().StringVar(&notes, "notes", "", "进度备注")

	return cmd
}

func buildCompleteCmd() *cobra.Command {
	var github, notes string

	cmd := &cobra.Command{
		Use:   "complete [挑战ID]",
		Short: "完成挑战",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			if err := core.Services.Challenge.CompleteChallenge(cmd.Context(), id, github, notes); err != nil {
				fmt.Printf("❌ 完成失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🎉 挑战 #%d 已完成！\n", id)
		},
	}

	cmd.Flags().StringVar(&github, "github", "", "项目仓库链接")
	cmd.Flags().StringVar(&notes, "notes", "", "总结")

	return cmd
}

func buildAbandonCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "abandon [挑战ID]",
		Short: "放弃挑战",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			if err := core.Services.Challenge.AbandonChallenge(cmd.Context(), id, reason); err != nil {
				fmt.Printf("❌ 操作失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("挑战 #%d 已放弃\n", id)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "放弃原因")

	return cmd
}

func buildObstacleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "obstacle",
		Short: "记录和检索挑战中的障碍（个人 Stack Overflow）",
	}

	addCmd := &cobra.Command{
		Use:   "add [挑战ID] [描述]",
		Short: "记录一个卡住的问题",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := core.Services.Challenge.LogObstacle(cmd.Context(), parseID(args[0]), strings.Join(args[1:], " "))
			if err != nil {
				fmt.Printf("❌ 记录失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🧱 障碍已记录 (#%d)，解决后用 'mind build obstacle solve %d' 记下方案\n", id, id)
		},
	}

	var insight, resources string
	var minutes int
	solveCmd := &cobra.Command{
		Use:   "solve [障碍ID] [解决方案]",
		Short: "记录障碍的解决方案",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			solution := strings.Join(args[1:], " ")
			if err := core.Services.Challenge.SolveObstacle(cmd.Context(), id, solution, insight, minutes, resources); err != nil {
				fmt.Printf("❌ 记录失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("💡 障碍 #%d 已解决\n", id)
		},
	}
	solveCmd.Flags().StringVar(&insight, "insight", "", "学到了什么")
	solveCmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "花了多少分钟")
	solveCmd.Flags().StringVar(&resources, "resources", "", "用到的资料")

	searchCmd := &cobra.Command{
		Use:   "search [关键词]",
		Short: "检索历史障碍和解法",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			hits, err := core.Services.Challenge.SearchObstacles(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				fmt.Printf("❌ 检索失败: %v\n", err)
				os.Exit(1)
			}
			if len(hits) == 0 {
				fmt.Println("📭 没有匹配的障碍记录")
				return
			}
			fmt.Printf("🔍 找到 %d 条:\n\n", len(hits))
			for _, h := range hits {
				fmt.Printf("──────────────────────────────────────\n")
				fmt.Printf("#%d [%s / %s] %s\n", h.ID, h.SkillName, h.ChallengeTitle, h.Description)
				if h.Solution != "" {
					fmt.Printf("  💡 %s\n", h.Solution)
				}
				if h.Insight != "" {
					fmt.Printf("  ✨ %s\n", h.Insight)
				}
			}
			fmt.Println("──────────────────────────────────────")
		},
	}

	cmd.AddCommand(addCmd, solveCmd, searchCmd)
	return cmd
}

func buildRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend [技能ID]",
		Short: "推荐下一个挑战",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			rec, err := core.Services.Challenge.GetRecommendedChallenge(cmd.Context(), parseID(args[0]))
			if err != nil {
				fmt.Printf("❌ 推荐失败: %v\n", err)
				os.Exit(1)
			}
			if rec == nil {
				fmt.Println("📭 暂无可推荐的挑战（前置条件未满足或已全部完成）")
				return
			}
			c := rec.Challenge
			fmt.Printf("🎯 推荐: #%d %s [%s, ~%dh]\n", c.ID, c.Title, c.Difficulty, c.EstimatedHours)
			if c.Description != "" {
				fmt.Printf("   %s\n", c.Description)
			}
			fmt.Printf("   理由: %s\n", rec.Justification)
			if len(rec.Unlocks) > 0 {
				fmt.Printf("   完成后解锁: %s\n", strings.Join(rec.Unlocks, ", "))
			}
		},
	}
}

func buildReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report [技能ID]",
		Short: "技能进展报告",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			report, err := core.Services.Challenge.GetProgressionReport(cmd.Context(), parseID(args[0]))
			if err != nil {
				fmt.Printf("❌ 生成报告失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("📊 %s 进展报告\n", report.Skill.Name)
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("  能力评估: %s (%d%%)\n", report.Competency.Level, report.Competency.Percent)
			fmt.Printf("  挑战: %d/%d 完成, %d 进行中\n",
				report.Challenges.Completed, report.Challenges.Total, report.Challenges.InProgress)
			fmt.Printf("  投入: %d 分钟 (%.1f 小时)\n",
				report.Challenges.TotalMinutes, float64(report.Challenges.TotalMinutes)/60)
			fmt.Printf("  障碍: %d/%d 已解决\n", report.Obstacles.Solved, report.Obstacles.Total)
			fmt.Printf("  能力证据: %d 条\n", report.EvidenceCount)
			fmt.Println("═══════════════════════════════════════")
		},
	}
}

// buildLibraryCmd 内置挑战库：不依赖模型的起步路线
func buildLibraryCmd() *cobra.Command {
	var skillID int64
	var difficulty, keyword string

	cmd := &cobra.Command{
		Use:   "library",
		Short: "浏览内置挑战库",
		Run: func(cmd *cobra.Command, args []string) {
			var entries []service.LibraryChallenge
			if keyword != "" {
				entries = service.SearchLibrary(keyword)
			} else {
				var err error
				entries, err = libraryEntriesForSkill(cmd, skillID)
				if err != nil {
					fmt.Printf("❌ 查询失败: %v\n", err)
					os.Exit(1)
				}
				if difficulty != "" {
					var filtered []service.LibraryChallenge
					for _, e := range entries {
						if e.Difficulty == schema.Difficulty(difficulty) {
							filtered = append(filtered, e)
						}
					}
					entries = filtered
				}
			}
			if len(entries) == 0 {
				fmt.Println("📭 没有匹配的内置挑战")
				return
			}

			fmt.Printf("📚 内置挑战库 (%d)\n", len(entries))
			for i, e := range entries {
				fmt.Printf("  %d. %s %s [%s, ~%dh]\n", i+1, difficultyIcon(e.Difficulty), e.Title, e.Difficulty, e.EstimatedHours)
				fmt.Printf("     练到: %s\n", strings.Join(e.SkillsTaught, ", "))
			}
			fmt.Println("💡 使用 'mind build library start [技能ID] [编号]' 开始一条")
		},
	}

	cmd.Flags().Int64Var(&skillID, "skill", 0, "按技能名推断方向（0=全部）")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "按难度过滤 (beginner/intermediate/advanced)")
	cmd.Flags().StringVar(&keyword, "search", "", "按关键词搜索")

	startCmd := &cobra.Command{
		Use:   "start [技能ID] [编号]",
		Short: "把库里的一条挑战落库并开始",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			sid := parseID(args[0])
			entries, err := libraryEntriesForSkill(cmd, sid)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}

			idx := int(parseID(args[1]))
			if idx < 1 || idx > len(entries) {
				fmt.Printf("❌ 编号 %d 超出范围 (1-%d)\n", idx, len(entries))
				os.Exit(1)
			}
			entry := entries[idx-1]

			id, err := core.Services.Challenge.StartLibraryChallenge(cmd.Context(), sid, entry)
			if err != nil {
				fmt.Printf("❌ 开始失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🚀 挑战已开始 (#%d): %s\n", id, entry.Title)
			fmt.Println("💡 遇到卡点时用 'mind build obstacle add' 记下来")
		},
	}
	cmd.AddCommand(startCmd)

	return cmd
}

// libraryEntriesForSkill 给了技能 ID 时按技能名推断方向，推断不出或没给时返回全部
func libraryEntriesForSkill(cmd *cobra.Command, skillID int64) ([]service.LibraryChallenge, error) {
	category := ""
	if skillID != 0 {
		skill, err := core.Repos.Skill.GetByID(cmd.Context(), skillID)
		if err != nil {
			return nil, err
		}
		category = service.LibraryCategoryForSkill(skill.Name)
	}
	return service.LibraryChallenges(category, ""), nil
}

// difficultyIcon 难度的展示图标
func difficultyIcon(d schema.Difficulty) string {
	switch d {
	case schema.DifficultyBeginner:
		return "🟢"
	case schema.DifficultyIntermediate:
		return "🟡"
	case schema.DifficultyAdvanced:
		return "🔴"
	default:
		return "⚪"
	}
}

func buildStreakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streak",
		Short: "每日打卡与连胜",
	}

	var minutes, encountered, solved int
	var challengeID int64
	var notes string
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "记录今天的投入",
		Run: func(cmd *cobra.Command, args []string) {
			if err := core.Services.Streak.LogDailyStreak(cmd.Context(), minutes, challengeID, encountered, solved, notes); err != nil {
				fmt.Printf("❌ 记录失败: %v\n", err)
				os.Exit(1)
			}
			stats, err := core.Services.Streak.GetStreakStats(cmd.Context())
			if err != nil {
				fmt.Println("✅ 已打卡")
				return
			}
			fmt.Printf("✅ 已打卡，当前连续 %d 天 🔥\n", stats.CurrentStreak)
		},
	}
	logCmd.Flags().IntVarP(&minutes, "minutes", "m", 0, "今天投入分钟数")
	logCmd.Flags().Int64Var(&challengeID, "challenge", 0, "关联的挑战 ID")
	logCmd.Flags().IntVar(&encountered, "obstacles", 0, "遇到的障碍数")
	logCmd.Flags().IntVar(&solved, "solved", 0, "解决的障碍数")
	logCmd.Flags().StringVar(&notes, "notes", "", "备注")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "查看连胜统计",
		Run: func(cmd *cobra.Command, args []string) {
			stats, err := core.Services.Streak.GetStreakStats(cmd.Context())
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🔥 当前连胜: %d 天\n", stats.CurrentStreak)
			fmt.Printf("🏆 最长连胜: %d 天\n", stats.LongestStreak)
			fmt.Printf("📅 总打卡: %d 天\n", stats.TotalDays)
		},
	}

	cmd.AddCommand(logCmd, statsCmd)
	return cmd
}

// statusIcon 挑战状态的展示图标
func statusIcon(s schema.ChallengeStatus) string {
	switch s {
	case schema.ChallengeInProgress:
		return "🔨"
	case schema.ChallengeCompleted:
		return "✅"
	case schema.ChallengeAbandoned:
		return "🚫"
	default:
		return "▢"
	}
}
