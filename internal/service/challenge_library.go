package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuqie6/MindMirror/internal/schema"
)

// LibraryChallenge 内置挑战库里的一条挑战
type LibraryChallenge struct {
	Title          string
	Description    string
	Difficulty     schema.Difficulty
	EstimatedHours int
	SkillsTaught   []string
	Prerequisites  []string
	Unlocks        []string
}

// 按方向组织的内置挑战库，启动新方向时不依赖模型也有路可走
var challengeLibrary = map[string][]LibraryChallenge{
	"python": {
		{
			Title:          "命令行 Todo 应用",
			Description:    "实现一个命令行待办工具：添加、列出、完成、删除任务，并支持存盘与加载。练习函数、列表与字典、文件读写和用户输入。",
			Difficulty:     schema.DifficultyBeginner,
			EstimatedHours: 3,
			SkillsTaught:   []string{"函数", "列表", "字典", "文件读写", "用户输入"},
			Prerequisites:  []string{"基础语法"},
			Unlocks:        []string{"装饰器校验器", "网页抓取器"},
		},
		{
			Title:          "网页抓取器",
			Description:    "抓取一个网站的数据（比如新闻标题），解析 HTML，优雅处理错误，结果存成 CSV。练习 HTTP 请求、HTML 解析、异常处理和数据处理。",
			Difficulty:     schema.DifficultyBeginner,
			EstimatedHours: 4,
			SkillsTaught:   []string{"HTTP 请求", "HTML 解析", "异常处理", "CSV"},
			Prerequisites:  []string{"函数", "字典"},
			Unlocks:        []string{"数据管道"},
		},
		{
			Title:          "装饰器校验器",
			Description:    "用装饰器实现一套输入校验：类型检查、范围校验、自定义校验器。练习装饰器、函数组合和设计模式。",
			Difficulty:     schema.DifficultyIntermediate,
			EstimatedHours: 4,
			SkillsTaught:   []string{"装饰器", "类型标注", "校验", "设计模式"},
			Prerequisites:  []string{"函数", "命令行 Todo 应用"},
			Unlocks:        []string{"简易 REST API"},
		},
		{
			Title:          "简易 REST API",
			Description:    "用 Web 框架实现 CRUD 接口：JSON 响应、错误处理、基础认证。练习 Web 框架、REST 原则和 API 设计。",
			Difficulty:     schema.DifficultyIntermediate,
			EstimatedHours: 5,
			SkillsTaught:   []string{"Web 框架", "REST", "HTTP", "JSON", "认证"},
			Prerequisites:  []string{"装饰器", "字典"},
			Unlocks:        []string{},
		},
	},
	"data_analysis": {
		{
			Title:          "公开数据集分析",
			Description:    "选一个公开数据集：加载探索、清洗预处理、做可视化、找出结论并写一份简短报告。练习 pandas、数据清洗、可视化和探索性分析。",
			Difficulty:     schema.DifficultyBeginner,
			EstimatedHours: 5,
			SkillsTaught:   []string{"pandas", "matplotlib", "数据清洗", "探索性分析"},
			Prerequisites:  []string{"基础语法"},
			Unlocks:        []string{"自动报告生成器", "时间序列分析"},
		},
		{
			Title:          "自动报告生成器",
			Description:    "从 CSV 加载数据、执行分析、生成图表，输出 PDF 或 HTML 报告并定时运行。练习自动化、报表和数据管道。",
			Difficulty:     schema.DifficultyIntermediate,
			EstimatedHours: 6,
			SkillsTaught:   []string{"自动化", "pandas", "报表", "定时任务"},
			Prerequisites:  []string{"公开数据集分析"},
			Unlocks:        []string{},
		},
		{
			Title:          "时间序列分析",
			Description:    "分析一份时间序列数据：识别趋势与季节性、做预测、可视化模式。练习时间序列、预测和统计分析。",
			Difficulty:     schema.DifficultyIntermediate,
			EstimatedHours: 6,
			SkillsTaught:   []string{"时间序列", "预测", "统计", "pandas"},
			Prerequisites:  []string{"pandas"},
			Unlocks:        []string{},
		},
	},
	"machine_learning": {
		{
			Title:          "手写线性回归",
			Description:    "不用现成库实现线性回归：梯度下降、损失函数、训练循环、预测与可视化。练习机器学习基础、优化和 NumPy。",
			Difficulty:     schema.DifficultyBeginner,
			EstimatedHours: 6,
			SkillsTaught:   []string{"梯度下降", "NumPy", "优化", "机器学习基础"},
			Prerequisites:  []string{"基础数学", "NumPy"},
			Unlocks:        []string{"手写神经网络", "房价预测器"},
		},
		{
			Title:          "房价预测器",
			Description:    "用 scikit-learn 搭一条完整的机器学习管道：特征工程、模型选择、交叉验证、调参与部署。练习实战机器学习。",
			Difficulty:     schema.DifficultyIntermediate,
			EstimatedHours: 8,
			SkillsTaught:   []string{"scikit-learn", "特征工程", "模型选择"},
			Prerequisites:  []string{"pandas", "手写线性回归"},
			Unlocks:        []string{},
		},
		{
			Title:          "手写神经网络",
			Description:    "不依赖框架实现一个神经网络：前向传播、反向传播、激活函数，在小数据集上训练。练习深度学习原理与微积分应用。",
			Difficulty:     schema.DifficultyAdvanced,
			EstimatedHours: 10,
			SkillsTaught:   []string{"神经网络", "反向传播", "深度学习"},
			Prerequisites:  []string{"手写线性回归", "微积分"},
			Unlocks:        []string{},
		},
	},
	"digitalization": {
		{
			Title:          "物联网数据管道",
			Description:    "模拟传感器数据并做实时处理：入库存储、搭一个简单看板。练习物联网、实时系统和数据库。",
			Difficulty:     schema.DifficultyIntermediate,
			EstimatedHours: 8,
			SkillsTaught:   []string{"物联网", "实时处理", "数据库", "MQTT"},
			Prerequisites:  []string{"基础语法", "API"},
			Unlocks:        []string{"生产指标看板"},
		},
		{
			Title:          "生产指标看板",
			Description:    "为工厂指标做一个看板：实时 KPI 可视化、历史趋势、告警通知和性能分析。练习看板、数据可视化和实时系统。",
			Difficulty:     schema.DifficultyAdvanced,
			EstimatedHours: 10,
			SkillsTaught:   []string{"看板", "实时可视化", "KPI", "数据库"},
			Prerequisites:  []string{"数据分析", "Web 基础"},
			Unlocks:        []string{},
		},
	},
}

// LibraryCategoryForSkill 按技能名里的关键词猜挑战库方向，猜不出返回空串
func LibraryCategoryForSkill(skillName string) string {
	n := strings.ToLower(skillName)
	switch {
	case strings.Contains(n, "python"):
		return "python"
	case strings.Contains(n, "data") || strings.Contains(n, "analysis") || strings.Contains(n, "数据"):
		return "data_analysis"
	case strings.Contains(n, "machine") || strings.Contains(n, "ml") || strings.Contains(n, "机器学习"):
		return "machine_learning"
	case strings.Contains(n, "digital") || strings.Contains(n, "iot") || strings.Contains(n, "物联网"):
		return "digitalization"
	}
	return ""
}

// LibraryChallenges 取某方向的内置挑战，category 为空时返回全部
// difficulty 非空时按难度过滤
func LibraryChallenges(category string, difficulty schema.Difficulty) []LibraryChallenge {
	var out []LibraryChallenge
	if category != "" {
		out = append(out, challengeLibrary[strings.ToLower(category)]...)
	} else {
		for _, cat := range []string{"python", "data_analysis", "machine_learning", "digitalization"} {
			out = append(out, challengeLibrary[cat]...)
		}
	}
	if difficulty == "" {
		return out
	}

	var filtered []LibraryChallenge
	for _, c := range out {
		if c.Difficulty == difficulty {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// SearchLibrary 在标题、描述和技能点里做关键词匹配
func SearchLibrary(keyword string) []LibraryChallenge {
	k := strings.ToLower(keyword)
	var out []LibraryChallenge
	for _, c := range LibraryChallenges("", "") {
		if strings.Contains(strings.ToLower(c.Title), k) ||
			strings.Contains(strings.ToLower(c.Description), k) ||
			strings.Contains(strings.ToLower(strings.Join(c.SkillsTaught, " ")), k) {
			out = append(out, c)
		}
	}
	return out
}

// StartLibraryChallenge 把一条内置挑战落库并直接开始
func (s *ChallengeService) StartLibraryChallenge(ctx context.Context, skillID int64, entry LibraryChallenge) (int64, error) {
	c := &schema.Challenge{
		Title:          entry.Title,
		Description:    entry.Description,
		SkillID:        skillID,
		Difficulty:     entry.Difficulty,
		EstimatedHours: entry.EstimatedHours,
		SkillsTaught:   schema.JSONArray(entry.SkillsTaught),
		Prerequisites:  schema.JSONArray(entry.Prerequisites),
		Unlocks:        schema.JSONArray(entry.Unlocks),
	}
	id, err := s.CreateChallenge(ctx, c)
	if err != nil {
		return 0, err
	}
	if _, err := s.StartChallenge(ctx, id); err != nil {
		return 0, fmt.Errorf("开始挑战失败: %w", err)
	}
	return id, nil
}
