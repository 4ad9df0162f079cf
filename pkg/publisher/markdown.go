package publisher

import (
	"fmt"
	"strings"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

// BuildMarkdown は、コンセプトごとにシーンの6項目を並べたコピー用 Markdown を生成します。
// 各フィールドはそのまま出力します。
func BuildMarkdown(resp domain.AnalysisResponse) string {
	var sb strings.Builder

	sb.WriteString("# UGC Video Concepts\n\n")
	for i, c := range resp.Concepts {
		writeConcept(&sb, i+1, c)
	}
	return sb.String()
}

func writeConcept(sb *strings.Builder, num int, c domain.UGCConcept) {
	fmt.Fprintf(sb, "## Concept %d: %s\n\n", num, c.Title)
	if c.Strategy != "" {
		fmt.Fprintf(sb, "> %s\n\n", c.Strategy)
	}

	for i, s := range c.Scenes {
		title := s.Title
		if title == "" {
			title = fmt.Sprintf("Scene %d", i+1)
		}
		fmt.Fprintf(sb, "### %s\n\n", title)
		if s.Description != "" {
			fmt.Fprintf(sb, "%s\n\n", s.Description)
		}
		writeField(sb, "Text Overlay", s.TextOverlay)
		writeField(sb, "Narration (VO)", s.Narration)
		writeField(sb, "Image Prompt", s.ImageEditPrompt)
		writeField(sb, "Video Prompt", s.VideoGenPrompt)
	}
}

// 空のフィールドは見出しごと省略する
func writeField(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fence := codeFence(value)
	fmt.Fprintf(sb, "**%s**\n\n%s\n%s\n%s\n\n", label, fence, value, fence)
}

// codeFence は値に含まれる最長のバッククォート列より長いフェンスを返します。
func codeFence(value string) string {
	longest, run := 0, 0
	for _, r := range value {
		if r == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}
