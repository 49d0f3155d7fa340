package terminal

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"postdraft/internal/domain"
)

// Format は、端末への出力形式です
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// textColumnWidth は、表の本文列を折り返す幅です
const textColumnWidth = 64

// ParseFormat は、文字列から出力形式を解釈します。空文字列は表形式になります
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("未対応の出力形式です: %s (table, json, markdown)", value)
	}
}

// output は、JSON出力の形式です
type output struct {
	Request domain.GenerateRequest  `json:"request"`
	Result  *domain.GeneratedResult `json:"result"`
	Cards   []domain.Card           `json:"cards"`
}

// Render は、生成結果を指定の形式で書き出します
func Render(w io.Writer, format Format, req domain.GenerateRequest, result *domain.GeneratedResult) error {
	if result == nil {
		return nil
	}

	cards := domain.BuildCards(result, req.Platform)
	switch format {
	case FormatJSON:
		return renderJSON(w, req, result, cards)
	case FormatMarkdown:
		return renderMarkdown(w, req, result, cards)
	default:
		return renderTable(w, result, cards)
	}
}

func renderTable(w io.Writer, result *domain.GeneratedResult, cards []domain.Card) error {
	for _, card := range cards {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleRounded)
		t.SetTitle("案 %d ・ %s ・ %s", card.Index, card.PlatformLabel, card.Handle)
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 2, WidthMax: textColumnWidth},
		})
		t.AppendHeader(table.Row{"#", "投稿", "文字数", "状態"})

		for i, segment := range card.Segments {
			t.AppendRow(table.Row{
				i + 1,
				segment.Text,
				segment.CharCount,
				segmentStatus(segment),
			})
		}
		t.AppendSeparator()
		t.AppendRow(table.Row{"", "理由: " + card.Reasoning, "", ""})

		t.Render()
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return renderSources(w, result.Sources)
}

func renderSources(w io.Writer, sources []domain.GroundingSource) error {
	if len(sources) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "引用元 (%d)\n", len(sources)); err != nil {
		return err
	}
	for _, source := range sources {
		title := source.Title
		if title == "" {
			title = source.URI
		}
		if _, err := fmt.Fprintf(w, "  - %s\n    %s\n", title, source.URI); err != nil {
			return err
		}
	}
	return nil
}

func segmentStatus(segment domain.Segment) string {
	if segment.OverLimit {
		return "上限超過"
	}
	return "OK"
}

func renderJSON(w io.Writer, req domain.GenerateRequest, result *domain.GeneratedResult, cards []domain.Card) error {
	// 画像はファイルに書き出すため、JSONには含めない
	trimmed := *result
	trimmed.ImageData = ""

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output{Request: req, Result: &trimmed, Cards: cards})
}

func renderMarkdown(w io.Writer, req domain.GenerateRequest, result *domain.GeneratedResult, cards []domain.Card) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", req.Topic)
	fmt.Fprintf(&b, "- Platform: %s\n- Style: %s\n- Format: %s\n", req.Platform.DisplayName(), req.Style.DisplayName(), req.Format.DisplayName())

	for _, card := range cards {
		fmt.Fprintf(&b, "\n## 案 %d\n\n", card.Index)
		fmt.Fprintf(&b, "> %s\n", card.Reasoning)

		for i, segment := range card.Segments {
			b.WriteString("\n")
			if card.IsThread {
				fmt.Fprintf(&b, "### %d/%d\n\n", i+1, len(card.Segments))
			}
			b.WriteString(segment.Text)
			b.WriteString("\n\n")
			fmt.Fprintf(&b, "_%d文字 ・ %s_ ・ [投稿する](%s)\n", segment.CharCount, segmentStatus(segment), segment.ShareURL)
		}
	}

	if len(result.Sources) > 0 {
		b.WriteString("\n## 引用元\n\n")
		for _, source := range result.Sources {
			title := source.Title
			if title == "" {
				title = source.URI
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", title, source.URI)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteImage は、生成画像をファイルに書き出します。画像がない場合は false を返します
func WriteImage(path string, result *domain.GeneratedResult) (bool, error) {
	if !result.HasImage() {
		return false, nil
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageData)
	if err != nil {
		return false, fmt.Errorf("画像データのデコードに失敗: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("画像ファイルの書き込みに失敗: %w", err)
	}
	return true, nil
}
