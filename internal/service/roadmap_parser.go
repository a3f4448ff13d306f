package service

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuqie6/MindMirror/internal/schema"
)

// ChallengeDraft 从模型输出解析出的挑战草稿
type ChallengeDraft struct {
	Title          string
	Description    string
	Difficulty     schema.Difficulty
	EstimatedHours int
	SkillsTaught   []string
	Prerequisites  []string
}

// 字段标记容忍两侧的 markdown 强调符号
var (
	challengeMarkerRe = regexp.MustCompile(`\*{0,2}CHALLENGE\*{0,2}\s*:\*{0,2}`)
	roadmapFieldRe    = regexp.MustCompile(`\*{0,2}(DIFFICULTY|HOURS|DESCRIPTION|SKILLS|PREREQUISITES)\*{0,2}\s*:\*{0,2}`)
	firstIntRe        = regexp.MustCompile(`\d+`)
)

// ParseChallenges 从自由文本中解析挑战列表
// 模型输出不保证严格符合格式，单块解析失败只跳过该块，不中断整批
func ParseChallenges(raw string) []ChallengeDraft {
	markers := challengeMarkerRe.FindAllStringIndex(raw, -1)
	if len(markers) == 0 {
		return nil
	}

	drafts := make([]ChallengeDraft, 0, len(markers))
	for i, m := range markers {
		end := len(raw)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		block := raw[m[1]:end]

		draft, ok := parseChallengeBlock(block)
		if !ok {
			slog.Warn("跳过无法解析的挑战块", "block", truncateRunes(strings.TrimSpace(block), 60))
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts
}

// parseChallengeBlock 解析单个挑战块：首行是标题，其余按字段标记切分
func parseChallengeBlock(block string) (ChallengeDraft, bool) {
	title := block
	rest := ""
	if idx := strings.IndexByte(block, '\n'); idx >= 0 {
		title = block[:idx]
		rest = block[idx+1:]
	}
	title = stripEmphasis(title)
	if len([]rune(title)) < 3 {
		return ChallengeDraft{}, false
	}

	fields := extractFields(rest)

	description := stripEmphasis(fields["DESCRIPTION"])
	if description == "" {
		description = title
	}

	hours := defaultEstimatedHours
	if v := firstIntRe.FindString(fields["HOURS"]); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			hours = n
		}
	}

	prereqs := splitList(fields["PREREQUISITES"])
	if containsNone(fields["PREREQUISITES"]) {
		prereqs = nil
	}

	return ChallengeDraft{
		Title:          title,
		Description:    description,
		Difficulty:     schema.ParseDifficulty(stripEmphasis(fields["DIFFICULTY"]), schema.DifficultyIntermediate),
		EstimatedHours: hours,
		SkillsTaught:   splitList(fields["SKILLS"]),
		Prerequisites:  prereqs,
	}, true
}

const defaultEstimatedHours = 5

// extractFields 字段值从标记处延伸到下一个标记或块尾
func extractFields(text string) map[string]string {
	fields := make(map[string]string)
	matches := roadmapFieldRe.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		name := text[m[2]:m[3]]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		fields[name] = strings.TrimSpace(text[m[1]:end])
	}
	return fields
}

// stripEmphasis 去掉 markdown 强调符号并收紧空白
func stripEmphasis(s string) string {
	s = strings.NewReplacer("*", "", "`", "", "#", "").Replace(s)
	return strings.TrimSpace(s)
}

// splitList 按逗号切成去空白的非空列表
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = stripEmphasis(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// containsNone 前置条件写着 none 时视为无前置
func containsNone(s string) bool {
	return strings.Contains(strings.ToLower(s), "none")
}
