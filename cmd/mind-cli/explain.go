package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// explainCmd 概念讲解：生成、查看、列出按技能保存的 markdown 讲解
func explainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain",
		Short: "概念讲解（生成并保存为 markdown）",
	}

	cmd.AddCommand(
		explainNewCmd(),
		explainShowCmd(),
		explainListCmd(),
	)
	return cmd
}

func explainNewCmd() *cobra.Command {
	var guidance string
	var force bool

	cmd := &cobra.Command{
		Use:   "new [技能ID] [主题]",
		Short: "生成一篇讲解并保存",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			if err := core.RequireAIConfigured(); err != nil {
				fmt.Println("⚠️  Claude API 未配置")
				fmt.Println("   请设置环境变量: ANTHROPIC_API_KEY")
				fmt.Println("   或在 config.yaml 中配置 ai.claude.api_key")
				os.Exit(1)
			}

			skillID := parseID(args[0])
			topic := strings.Join(args[1:], " ")

			if !force {
				exists, err := core.Services.Explain.Exists(cmd.Context(), skillID, topic)
				if err != nil {
					fmt.Printf("❌ 检查失败: %v\n", err)
					os.Exit(1)
				}
				if exists {
					fmt.Printf("⚠️  「%s」已有讲解，使用 'mind explain show' 查看，或加 --force 重新生成\n", topic)
					return
				}
			}

			fmt.Printf("🤔 正在生成「%s」的讲解...\n", topic)
			content, err := core.Services.Explain.Explain(cmd.Context(), skillID, topic, guidance)
			if err != nil {
				fmt.Printf("❌ 生成失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("═══════════════════════════════════════")
			fmt.Println(content)
			fmt.Println("═══════════════════════════════════════")

			path, err := core.Services.Explain.Save(cmd.Context(), skillID, topic, guidance, content)
			if err != nil {
				fmt.Printf("❌ 保存失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("💾 已保存: %s\n", path)
		},
	}

	cmd.Flags().StringVarP(&guidance, "guidance", "g", "", "定制要求，如 '多给例子' 或 '讲得简单点'")
	cmd.Flags().BoolVar(&force, "force", false, "已存在时重新生成并覆盖")

	return cmd
}

func explainShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [技能ID] [主题]",
		Short: "查看已保存的讲解",
		Args:  cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			skillID := parseID(args[0])
			topic := strings.Join(args[1:], " ")

			content, err := core.Services.Explain.Get(cmd.Context(), skillID, topic)
			if err != nil {
				fmt.Printf("❌ 读取失败: %v\n", err)
				os.Exit(1)
			}
			if content == "" {
				fmt.Printf("📭 没有「%s」的讲解，使用 'mind explain new' 生成\n", topic)
				return
			}
			fmt.Println(content)
		},
	}
}

func explainListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [技能ID]",
		Short: "列出某技能已保存的讲解",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			topics, err := core.Services.Explain.List(cmd.Context(), parseID(args[0]))
			if err != nil {
				fmt.Printf("❌ 查询失败: %v\n", err)
				os.Exit(1)
			}
			if len(topics) == 0 {
				fmt.Println("📭 还没有保存过讲解")
				return
			}
			fmt.Printf("📖 已保存的讲解 (%d)\n", len(topics))
			for _, t := range topics {
				fmt.Printf("  • %s\n", t)
			}
		},
	}
}
