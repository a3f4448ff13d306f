package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yuqie6/MindMirror/internal/schema"
	"github.com/yuqie6/MindMirror/internal/service"
)

// parseID 解析命令行里的数字 ID，非法输入直接退出
func parseID(s string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		fmt.Printf("❌ 无效的 ID: %s\n", s)
		os.Exit(1)
	}
	return id
}

// learnCmd 学习追踪
func learnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "学习追踪（技能/会话/间隔重复）",
	}

	cmd.AddCommand(
		learnAddSkillCmd(),
		learnSkillsCmd(),
		learnShowCmd(),
		learnLogCmd(),
		learnAddItemCmd(),
		learnDueCmd(),
		learnReviewCmd(),
		learnSearchCmd(),
		learnMilestoneCmd(),
		learnDailyCmd(),
		learnStatsCmd(),
	)
	return cmd
}

func learnAddSkillCmd() *cobra.Command {
	var category, difficulty, target, notes string

	cmd := &cobra.Command{
		Use:   "add-skill [名称]",
		Short: "添加要学习的技能",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := strings.Join(args, " ")
			diff := schema.ParseDifficulty(difficulty, schema.DifficultyBeginner)

			id, err := core.Services.Learning.AddSkill(cmd.Context(), name, category, diff, target, notes)
			if errors.Is(err, service.ErrDuplicateSkill) {
				fmt.Printf("⚠️  技能已存在 (#%d): %s\n", id, name)
				return
			}
			if err != nil {
				fmt.Printf("❌ 添加失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 技能已添加 (#%d): %s\n", id, name)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "分类，如 programming/language")
	cmd.Flags().StringVar(&difficulty, "difficulty", "beginner", "难度 (beginner/intermediate/advanced)")
	cmd.Flags().StringVar(&target, "target", "", "目标水平")
	cmd.Flags().StringVar(&notes, "notes", "", "备注")

	return cmd
}

func learnSkillsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "skills",
		Short: "列出技能",
		Run: func(cmd *cobra.Command, args []string) {
			status := schema.SkillStatusActive
			if all {
				status = ""
			}
			skills, err := core.Services.Learning.ListSkills(cmd.Context(), status)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			if len(skills) == 0 {
				fmt.Println("📚 还没有技能，使用 'mind learn add-skill' 添加")
				return
			}
			fmt.Printf("📚 技能 (%d)\n", len(skills))
			for _, s := range skills {
				line := fmt.Sprintf("  #%d %s [%s]", s.ID, s.Name, s.Difficulty)
				if s.TotalTimeMinutes > 0 {
					line += fmt.Sprintf(" %dh%dm", s.TotalTimeMinutes/60, s.TotalTimeMinutes%60)
				}
				if s.Status == schema.SkillStatusArchived {
					line += " (已归档)"
				}
				fmt.Println(line)
			}
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "包含已归档技能")

	return cmd
}

func learnShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [技能ID]",
		Short: "查看技能详情",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			details, err := core.Services.Learning.GetSkillDetails(cmd.Context(), parseID(args[0]))
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}

			s := details.Skill
			fmt.Printf("📖 %s [%s]\n", s.Name, s.Difficulty)
			fmt.Println("═══════════════════════════════════════")
			if s.Category != "" {
				fmt.Printf("  分类: %s\n", s.Category)
			}
			if s.TargetLevel != "" {
				fmt.Printf("  目标: %s\n", s.TargetLevel)
			}
			fmt.Printf("  累计学习: %dh%dm\n", s.TotalTimeMinutes/60, s.TotalTimeMinutes%60)
			if s.NextReview != nil {
				fmt.Printf("  下次复习: %s\n", s.NextReview.Format("2006-01-02 15:04"))
			}
			if s.RoadmapGenerated {
				fmt.Println("  🗺️ 已有挑战路线图")
			}

			if stats := details.ItemStats; stats != nil && stats.TotalItems > 0 {
				fmt.Printf("\n🗂 学习条目: %d 个, 平均信心 %.1f, 正确率 %s\n",
					stats.TotalItems, stats.AvgConfidence, percent(stats.TotalCorrect, stats.TotalReviews))
			}

			if len(details.RecentSessions) > 0 {
				fmt.Println("\n🕑 最近会话:")
				for _, sess := range details.RecentSessions {
					fmt.Printf("  %s %d 分钟  %s\n",
						sess.SessionDate.Format("01-02"), sess.DurationMinutes, sess.TopicsCovered)
				}
			}
			fmt.Println("═══════════════════════════════════════")
		},
	}
}

func learnLogCmd() *cobra.Command {
	var minutes, level int
	var topics, notes, takeaways string

	cmd := &cobra.Command{
		Use:   "log [技能ID]",
		Short: "记录一次学习会话",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := core.Services.Learning.LogSession(cmd.Context(), parseID(args[0]), minutes, topics, level, notes, takeaways)
			if err != nil {
				fmt.Printf("❌ 记录失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 会话已记录 (#%d): %d 分钟\n", id, minutes)
		},
	}

	cmd.Flags().IntVarP(&minutes, "minutes", "m", 30, "学习时长（分钟）")
	cmd.Flags().IntVarP(&level, "level", "l", 3, "理解程度 1-5")
	cmd.Flags().StringVar(&topics, "topics", "", "涉及的主题")
	cmd.Flags().StringVar(&notes, "notes", "", "备注")
	cmd.Flags().StringVar(&takeaways, "takeaways", "", "关键收获")

	return cmd
}

func learnAddItemCmd() *cobra.Command {
	var itemType, question, tags, source string
	var difficulty int

	cmd := &cobra.Command{
		Use:   "add-item [技能ID] [内容]",
		Short: "添加一条间隔重复学习条目",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			answer := strings.Join(args[1:], " ")
			id, err := core.Services.Learning.AddLearningItem(cmd.Context(), parseID(args[0]),
				schema.ParseItemType(itemType), question, answer, difficulty, tags, source)
			if err != nil {
				fmt.Printf("❌ 添加失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 条目已添加 (#%d)，明天开始复习\n", id)
		},
	}

	cmd.Flags().StringVarP(&itemType, "type", "t", "concept", "类型 (concept/fact/qa/example)")
	cmd.Flags().StringVarP(&question, "question", "q", "", "问题（qa 类型必填）")
	cmd.Flags().IntVar(&difficulty, "difficulty", 3, "难度 1-5")
	cmd.Flags().StringVar(&tags, "tags", "", "标签，逗号分隔")
	cmd.Flags().StringVar(&source, "source", "", "出处")

	return cmd
}

func learnDueCmd() *cobra.Command {
	var skillID int64
	var limit int

	cmd := &cobra.Command{
		Use:   "due",
		Short: "查看到期待复习的条目",
		Run: func(cmd *cobra.Command, args []string) {
			items, err := core.Services.Learning.ItemsDueForReview(cmd.Context(), skillID, limit)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			if len(items) == 0 {
				fmt.Println("🎉 没有到期的条目，今天可以休息")
				return
			}
			fmt.Printf("⏰ %d 个条目等待复习:\n", len(items))
			for _, item := range items {
				fmt.Printf("  #%d [%s] %s\n", item.ID, item.ItemType, itemHeadline(&item))
			}
			fmt.Println("\n使用 'mind learn review' 开始复习")
		},
	}

	cmd.Flags().Int64Var(&skillID, "skill", 0, "只看某个技能（0=全部）")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "最多显示数量")

	return cmd
}

func learnReviewCmd() *cobra.Command {
	var skillID int64
	var limit int

	cmd := &cobra.Command{
		Use:   "review",
		Short: "交互式复习到期条目",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			items, err := core.Services.Learning.ItemsDueForReview(ctx, skillID, limit)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			if len(items) == 0 {
				fmt.Println("🎉 没有到期的条目")
				return
			}

			reader := bufio.NewReader(os.Stdin)
			reviewed, correct := 0, 0

			for i, item := range items {
				fmt.Printf("\n[%d/%d] ", i+1, len(items))
				if item.Question != "" {
					fmt.Printf("❓ %s\n", item.Question)
					fmt.Print("   (回车查看答案) ")
					_, _ = reader.ReadString('\n')
					fmt.Printf("💡 %s\n", item.Answer)
				} else {
					fmt.Printf("💡 %s\n", item.Answer)
				}

				ok := askYesNo(reader, "   记住了吗 (y/n): ")
				confidence := askRange(reader, "   信心 1-5: ", 1, 5, item.ConfidenceLevel)

				if err := core.Services.Learning.RecordReview(ctx, item.ID, ok, item.ConfidenceLevel, confidence, 0); err != nil {
					fmt.Printf("❌ 记录失败: %v\n", err)
					continue
				}
				reviewed++
				if ok {
					correct++
				}
			}

			fmt.Printf("\n✅ 复习完成: %d/%d 正确\n", correct, reviewed)
		},
	}

	cmd.Flags().Int64Var(&skillID, "skill", 0, "只复习某个技能（0=全部）")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "本轮最多复习数量")

	return cmd
}

func learnSearchCmd() *cobra.Command {
	var skillID int64
	var limit int

	cmd := &cobra.Command{
		Use:   "search [关键词]",
		Short: "搜索学习条目",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			keyword := strings.Join(args, " ")
			items, err := core.Services.Learning.SearchItems(cmd.Context(), keyword, skillID, limit)
			if err != nil {
				fmt.Printf("❌ 搜索失败: %v\n", err)
				os.Exit(1)
			}
			if len(items) == 0 {
				fmt.Println("📭 没有匹配的条目")
				return
			}
			fmt.Printf("🔍 找到 %d 条:\n", len(items))
			for _, item := range items {
				fmt.Printf("  #%d [%s] %s\n", item.ID, item.ItemType, itemHeadline(&item))
			}
		},
	}

	cmd.Flags().Int64Var(&skillID, "skill", 0, "只搜某个技能（0=全部）")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "最多返回数量")

	return cmd
}

func learnMilestoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "管理技能里程碑",
	}

	var targetDate, notes string
	addCmd := &cobra.Command{
		Use:   "add [技能ID] [内容]",
		Short: "添加里程碑",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := core.Services.Learning.AddMilestone(cmd.Context(), parseID(args[0]),
				strings.Join(args[1:], " "), targetDate, notes)
			if err != nil {
				fmt.Printf("❌ 添加失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🚩 里程碑已添加 (#%d)\n", id)
		},
	}
	addCmd.Flags().StringVar(&targetDate, "date", "", "目标日期 YYYY-MM-DD")
	addCmd.Flags().StringVar(&notes, "notes", "", "备注")

	var includeDone bool
	listCmd := &cobra.Command{
		Use:   "list [技能ID]",
		Short: "查看里程碑",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			milestones, err := core.Services.Learning.ListMilestones(cmd.Context(), parseID(args[0]), includeDone)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			if len(milestones) == 0 {
				fmt.Println("📭 暂无里程碑")
				return
			}
			for _, m := range milestones {
				mark := "▢"
				if m.Completed {
					mark = "✅"
				}
				line := fmt.Sprintf("  %s #%d %s", mark, m.ID, m.Milestone)
				if m.TargetDate != "" {
					line += fmt.Sprintf(" (目标 %s)", m.TargetDate)
				}
				fmt.Println(line)
			}
		},
	}
	listCmd.Flags().BoolVar(&includeDone, "all", false, "包含已完成")

	var doneNotes string
	doneCmd := &cobra.Command{
		Use:   "done [ID]",
		Short: "完成里程碑",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			if err := core.Services.Learning.CompleteMilestone(cmd.Context(), id, doneNotes); err != nil {
				fmt.Printf("❌ 完成失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🎉 里程碑 #%d 已完成\n", id)
		},
	}
	doneCmd.Flags().StringVar(&doneNotes, "notes", "", "完成备注")

	cmd.AddCommand(addCmd, listCmd, doneCmd)
	return cmd
}

func learnDailyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "daily",
		Short: "今日复习概览",
		Run: func(cmd *cobra.Command, args []string) {
			review, err := core.Services.Learning.GetDailyReview(cmd.Context(), limit)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("📅 今日复习")
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("  待复习技能: %d\n", review.DueSkills)
			fmt.Printf("  待复习条目: %d\n", review.DueItems)
			if len(review.Items) > 0 {
				fmt.Println("\n  优先条目:")
				for _, item := range review.Items {
					fmt.Printf("  • #%d [%s] %s\n", item.ID, item.ItemType, itemHeadline(&item))
				}
			}
			fmt.Println("═══════════════════════════════════════")
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "最多显示条目数")

	return cmd
}

func learnStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "最近 7 天学习统计",
		Run: func(cmd *cobra.Command, args []string) {
			stats, err := core.Services.Learning.GetLearningStats(cmd.Context())
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("📊 最近 7 天")
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("  学习会话: %d 次, %d 分钟 (%.1f 小时)\n",
				stats.SessionsLast7Days, stats.MinutesLast7Days, float64(stats.MinutesLast7Days)/60)
			fmt.Printf("  复习: %d 次, 正确率 %s\n",
				stats.ReviewsLast7Days, percent(stats.CorrectLast7Days, stats.ReviewsLast7Days))
			fmt.Printf("  当前待复习: %d 条\n", stats.DueItems)
			if len(stats.TimeBySkill) > 0 {
				fmt.Println("\n  按技能:")
				for _, t := range stats.TimeBySkill {
					fmt.Printf("  • %s: %d 次, %d 分钟\n", t.SkillName, t.SessionCount, t.TotalMinutes)
				}
			}
			fmt.Println("═══════════════════════════════════════")
		},
	}
}

// itemHeadline 列表里展示条目时取问题或答案开头
func itemHeadline(item *schema.LearningItem) string {
	text := item.Question
	if text == "" {
		text = item.Answer
	}
	runes := []rune(text)
	if len(runes) > 60 {
		return string(runes[:60]) + "..."
	}
	return text
}

// percent 安全的百分比格式化
func percent(part, total int64) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)/float64(total)*100)
}

// askYesNo 读取 y/n 回答，空输入按 y 处理
func askYesNo(reader *bufio.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer != "n" && answer != "no"
}

// askRange 读取范围内的整数，非法输入用 fallback
func askRange(reader *bufio.Reader, prompt string, min, max, fallback int) int {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < min || n > max {
		return fallback
	}
	return n
}
