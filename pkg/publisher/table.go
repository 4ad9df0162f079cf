package publisher

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/shouni/go-ugc-kit/pkg/domain"
)

const tableCellWidth = 48

// RenderTable はコンセプトをターミナル向けの表に整形します。
func RenderTable(resp domain.AnalysisResponse) string {
	if len(resp.Concepts) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Concept", "Scene", "Text Overlay", "Narration", "Video Prompt"})

	for ci, c := range resp.Concepts {
		for _, s := range c.Scenes {
			tw.AppendRow(table.Row{
				strconv.Itoa(ci + 1),
				c.Title,
				s.Title,
				oneLine(s.TextOverlay),
				oneLine(s.Narration),
				oneLine(s.VideoGenPrompt),
			})
		}
		tw.AppendSeparator()
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft, AutoMerge: true},
		{Number: 2, AutoMerge: true, WidthMax: 24},
		{Number: 3, WidthMax: 20},
		{Number: 4, WidthMax: tableCellWidth},
		{Number: 5, WidthMax: tableCellWidth},
		{Number: 6, WidthMax: tableCellWidth},
	})

	return tw.Render()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
