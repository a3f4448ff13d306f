package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yuqie6/MindMirror/internal/bootstrap"
	"github.com/yuqie6/MindMirror/internal/pkg/buildinfo"
	"github.com/yuqie6/MindMirror/internal/pkg/config"
	"github.com/yuqie6/MindMirror/internal/service"
	"github.com/yuqie6/MindMirror/internal/watcher"
)

var (
	cfgFile string
	core    *bootstrap.Core
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mind",
		Short: "Mind - 带长期记忆的个人 AI 助手与学习追踪器",
		Long:  `Mind 是一个本地优先的 CLI 助手：对话记得你的事实、偏好和目标，学习进度用间隔重复和实战挑战来追踪。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			core, err = bootstrap.NewCore(cfgFile)
			if err != nil {
				slog.Error("初始化失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if core != nil {
				_ = core.Shutdown(cmd.Context())
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(rememberCmd())
	rootCmd.AddCommand(recallCmd())
	rootCmd.AddCommand(prefCmd())
	rootCmd.AddCommand(goalCmd())
	rootCmd.AddCommand(filesCmd())
	rootCmd.AddCommand(learnCmd())
	rootCmd.AddCommand(explainCmd())
	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(roadmapCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// chatCmd 交互式对话
func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "与助手对话（带长期记忆）",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			chat := core.Services.Chat

			// Ctrl+C 退出时兜底保存对话
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				fmt.Println("\n👋 再见")
				_ = core.Shutdown(context.Background())
				os.Exit(0)
			}()

			fmt.Println("💬 开始对话，输入 exit 退出")
			fmt.Println("   提示: \"remember that ...\" 或 \"记住 ...\" 会直接写入长期记忆")
			fmt.Println()

			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

			for {
				fmt.Print("你 > ")
				if !scanner.Scan() {
					break
				}
				input := strings.TrimSpace(scanner.Text())
				if input == "" {
					continue
				}
				if input == "exit" || input == "quit" || input == "退出" {
					break
				}

				reply, err := chat.Send(ctx, input)
				if err != nil {
					fmt.Printf("❌ %v\n", err)
					continue
				}
				fmt.Printf("\n助手 > %s\n\n", reply)
			}

			if err := chat.Close(ctx); err != nil {
				slog.Warn("保存对话失败", "error", err)
			} else if chat.MessageCount() > 0 {
				fmt.Println("💾 对话已保存")
			}
		},
	}
}

// rememberCmd 记一条事实
func rememberCmd() *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   "remember [内容]",
		Short: "记住一条关于你的事实",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			content := strings.Join(args, " ")
			id, err := core.Services.Memory.RememberFact(cmd.Context(), content, note)
			if err != nil {
				fmt.Printf("❌ 记录失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 已记住 (#%d): %s\n", id, content)
		},
	}

	cmd.Flags().StringVar(&note, "context", "", "补充背景")

	return cmd
}

// recallCmd 语义检索记忆
func recallCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "recall [问题]",
		Short: "检索长期记忆（语义搜索，未配置嵌入服务时降级为关键词）",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			query := strings.Join(args, " ")
			hits, err := core.Services.Memory.Recall(cmd.Context(), query, topK)
			if err != nil {
				fmt.Printf("❌ 检索失败: %v\n", err)
				os.Exit(1)
			}
			if len(hits) == 0 {
				fmt.Println("📚 没有找到相关记忆")
				return
			}
			fmt.Printf("📚 找到 %d 条相关记忆:\n\n", len(hits))
			printHits(hits)
		},
	}

	cmd.Flags().IntVarP(&topK, "top", "n", 5, "返回结果数量")

	return cmd
}

// filesCmd 检索已索引的文件
func filesCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "files [关键词]",
		Short: "检索被监控目录里索引过的文件",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			hits, err := core.Services.Memory.SearchFiles(cmd.Context(), strings.Join(args, " "), topK)
			if err != nil {
				fmt.Printf("❌ 检索失败: %v\n", err)
				os.Exit(1)
			}
			if len(hits) == 0 {
				fmt.Println("📭 没有匹配的文件（需要先运行 'mind watch' 建立索引）")
				return
			}
			for i, h := range hits {
				fmt.Printf("──────────────────────────────────────\n")
				fmt.Printf("[%d] %s\n", i+1, h.Path)
				if h.Summary != "" {
					fmt.Printf("  📝 %s\n", h.Summary)
				}
				fmt.Printf("  %s\n", h.Preview)
			}
			fmt.Println("──────────────────────────────────────")
		},
	}

	cmd.Flags().IntVarP(&topK, "top", "n", 3, "返回结果数量")

	return cmd
}

// statsCmd 学习与连胜总览
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "学习与打卡总览",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()

			learning, err := core.Services.Learning.GetLearningStats(ctx)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			streak, err := core.Services.Streak.GetStreakStats(ctx)
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("📊 总览")
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("  🔥 连续打卡: %d 天 (最长 %d, 总计 %d)\n",
				streak.CurrentStreak, streak.LongestStreak, streak.TotalDays)
			fmt.Printf("  📚 近 7 天: %d 次会话, %d 分钟\n",
				learning.SessionsLast7Days, learning.MinutesLast7Days)
			fmt.Printf("  🧠 近 7 天复习: %d 次, 正确率 %s\n",
				learning.ReviewsLast7Days, percent(learning.CorrectLast7Days, learning.ReviewsLast7Days))
			fmt.Printf("  ⏰ 当前待复习: %d 条\n", learning.DueItems)
			fmt.Println("═══════════════════════════════════════")
		},
	}
}

// prefCmd 偏好管理
func prefCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pref",
		Short: "管理偏好设置",
	}

	var desc string
	setCmd := &cobra.Command{
		Use:   "set [键] [值]",
		Short: "设置偏好",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := core.Services.Memory.SetPreference(cmd.Context(), args[0], args[1], desc); err != nil {
				fmt.Printf("❌ 设置失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ %s = %s\n", args[0], args[1])
		},
	}
	setCmd.Flags().StringVar(&desc, "desc", "", "偏好说明")

	getCmd := &cobra.Command{
		Use:   "get [键]",
		Short: "查看偏好",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			value, err := core.Services.Memory.GetPreference(cmd.Context(), args[0])
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			if value == "" {
				fmt.Printf("📭 未设置: %s\n", args[0])
				return
			}
			fmt.Printf("%s = %s\n", args[0], value)
		},
	}

	cmd.AddCommand(setCmd, getCmd)
	return cmd
}

// goalCmd 目标管理
func goalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goal",
		Short: "管理目标",
	}

	var deadline string
	addCmd := &cobra.Command{
		Use:   "add [内容]",
		Short: "添加目标",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id, err := core.Services.Memory.AddGoal(cmd.Context(), strings.Join(args, " "), deadline)
			if err != nil {
				fmt.Printf("❌ 添加失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🎯 目标已添加 (#%d)\n", id)
		},
	}
	addCmd.Flags().StringVar(&deadline, "deadline", "", "截止时间")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "查看进行中的目标",
		Run: func(cmd *cobra.Command, args []string) {
			goals, err := core.Services.Memory.ActiveGoals(cmd.Context())
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			if len(goals) == 0 {
				fmt.Println("📭 暂无进行中的目标")
				return
			}
			fmt.Printf("🎯 进行中的目标 (%d)\n", len(goals))
			for _, g := range goals {
				line := fmt.Sprintf("  #%d %s", g.ID, g.Content)
				if g.Deadline != "" {
					line += fmt.Sprintf(" (截止: %s)", g.Deadline)
				}
				fmt.Println(line)
			}
		},
	}

	doneCmd := &cobra.Command{
		Use:   "done [ID]",
		Short: "完成目标",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			if err := core.Services.Memory.CompleteGoal(cmd.Context(), id); err != nil {
				fmt.Printf("❌ 完成失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("🎉 目标 #%d 已完成\n", id)
		},
	}

	cmd.AddCommand(addCmd, listCmd, doneCmd)
	return cmd
}

// roadmapCmd AI 生成挑战路线图
func roadmapCmd() *cobra.Command {
	var level, goals, timeline string

	cmd := &cobra.Command{
		Use:   "roadmap [技能ID]",
		Short: "为技能生成 AI 挑战路线图",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := core.RequireAIConfigured(); err != nil {
				fmt.Println("⚠️  Claude API 未配置")
				fmt.Println("   请设置环境变量: ANTHROPIC_API_KEY")
				fmt.Println("   或在 config.yaml 中配置 ai.claude.api_key")
				os.Exit(1)
			}

			skillID := parseID(args[0])
			fmt.Println("🗺️  正在生成路线图...")

			created, err := core.Services.Roadmap.GenerateRoadmap(cmd.Context(), skillID, level, goals, timeline)
			if err != nil {
				fmt.Printf("❌ 生成失败: %v\n", err)
				os.Exit(1)
			}
			if created == 0 {
				fmt.Println("⚠️  模型输出里没有解析出任何挑战，请重试")
				return
			}
			fmt.Printf("✅ 已生成 %d 个挑战，使用 'mind build recommend %d' 查看推荐起点\n", created, skillID)
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "当前水平描述")
	cmd.Flags().StringVar(&goals, "goals", "", "学习目标")
	cmd.Flags().StringVar(&timeline, "timeline", "", "期望周期，如 '3 个月'")

	return cmd
}

// watchCmd 监控笔记目录并索引到记忆
func watchCmd() *cobra.Command {
	var paths []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "监控笔记目录，文件保存后自动写入记忆索引",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			watchPaths := paths
			if len(watchPaths) == 0 {
				watchPaths = core.Cfg.Watcher.Paths
			}
			if len(watchPaths) == 0 {
				fmt.Println("⚠️  没有配置监控目录")
				fmt.Println("   使用 --path 指定，或在 config.yaml 的 watcher.paths 中配置")
				os.Exit(1)
			}

			wcfg := watcher.DefaultConfig()
			if len(core.Cfg.Watcher.Extensions) > 0 {
				wcfg.Extensions = core.Cfg.Watcher.Extensions
			}
			if core.Cfg.Watcher.DebounceSec > 0 {
				wcfg.DebounceSec = core.Cfg.Watcher.DebounceSec
			}

			fw, err := watcher.NewFileWatcher(wcfg)
			if err != nil {
				fmt.Printf("❌ 创建监控器失败: %v\n", err)
				os.Exit(1)
			}
			for _, p := range watchPaths {
				if err := fw.AddWatchPath(p); err != nil {
					fmt.Printf("⚠️  监控 %s 失败: %v\n", p, err)
				}
			}

			if err := fw.Start(ctx); err != nil {
				fmt.Printf("❌ 启动监控失败: %v\n", err)
				os.Exit(1)
			}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigChan
				cancel()
				_ = fw.Stop()
			}()

			fmt.Printf("👀 正在监控 %d 个目录，Ctrl+C 退出\n", len(watchPaths))
			core.Services.FileIndex.Run(ctx, fw.Events())
			fmt.Println("监控已停止")
		},
	}

	cmd.Flags().StringSliceVar(&paths, "path", nil, "监控目录（可多次指定）")

	return cmd
}

// configCmd 配置管理
func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "管理配置",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "查看当前配置",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := core.Cfg
			fmt.Printf("应用: %s %s (日志级别 %s)\n", cfg.App.Name, cfg.App.Version, cfg.App.LogLevel)
			fmt.Printf("数据库: %s\n", cfg.Storage.DBPath)
			fmt.Printf("向量库: %s\n", cfg.Storage.VectorPath)
			fmt.Printf("对话导出: %s (max_tokens=%d)\n", cfg.Chat.ExportDir, cfg.Chat.MaxTokens)
			fmt.Printf("Claude: 模型=%s 已配置=%v\n", cfg.AI.Claude.Model, cfg.AI.Claude.APIKey != "")
			fmt.Printf("SiliconFlow: 嵌入=%s 重排=%s 已配置=%v\n",
				cfg.AI.SiliconFlow.EmbedModel, cfg.AI.SiliconFlow.RerankModel, cfg.AI.SiliconFlow.APIKey != "")
			if len(cfg.Watcher.Paths) > 0 {
				fmt.Printf("笔记监控: %s\n", strings.Join(cfg.Watcher.Paths, ", "))
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "生成默认配置文件",
		Run: func(cmd *cobra.Command, args []string) {
			path, err := config.DefaultConfigPath()
			if err != nil {
				fmt.Printf("❌ 确定配置路径失败: %v\n", err)
				os.Exit(1)
			}
			if _, err := os.Stat(path); err == nil {
				fmt.Printf("⚠️  配置文件已存在: %s\n", path)
				return
			} else if !errors.Is(err, os.ErrNotExist) {
				fmt.Printf("❌ 检查配置文件失败: %v\n", err)
				os.Exit(1)
			}
			if err := config.WriteFile(path, core.Cfg); err != nil {
				fmt.Printf("❌ 写入配置失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 已生成配置文件: %s\n", path)
		},
	}

	cmd.AddCommand(showCmd, initCmd)
	return cmd
}

// versionCmd 版本信息
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "查看版本",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mind %s (%s)\n", buildinfo.Version, buildinfo.Commit)
		},
	}
}

// printHits 打印记忆命中
func printHits(hits []service.MemoryHit) {
	for i, h := range hits {
		fmt.Printf("[%d] (%s) %s\n", i+1, h.Type, h.Content)
	}
}
