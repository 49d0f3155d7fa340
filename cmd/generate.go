package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"postdraft/internal/domain"
	"postdraft/internal/presentation/terminal"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "投稿の下書きを生成して端末に表示します",
	Example: `  postdraft generate --topic "Small language models" --style educational --format thread
  postdraft generate -t "GPU shortage" --platform linkedin --search --image --image-out cover.png`,
	RunE: runGenerate,
}

var (
	topic         string
	style         string
	postFormat    string
	platform      string
	useSearch     bool
	generateImage bool
	imageOut      string
	outputFormat  string
)

func init() {
	generateCmd.Flags().StringVarP(&topic, "topic", "t", "", "投稿のトピック（必須）")
	generateCmd.Flags().StringVarP(&style, "style", "s", string(domain.PostStyleProfessional), "投稿のトーン (professional, hype, educational, contrarian, meme)")
	generateCmd.Flags().StringVarP(&postFormat, "format", "f", string(domain.PostFormatSingle), "投稿の形式 (single, thread)")
	generateCmd.Flags().StringVarP(&platform, "platform", "p", string(domain.PlatformX), "投稿先 (x, linkedin)")
	generateCmd.Flags().BoolVar(&useSearch, "search", false, "Google検索で最新情報を取り込む")
	generateCmd.Flags().BoolVar(&generateImage, "image", false, "投稿に添える画像を生成する")
	generateCmd.Flags().StringVar(&imageOut, "image-out", "draft-image.png", "生成画像の保存先")
	generateCmd.Flags().StringVarP(&outputFormat, "output", "o", string(terminal.FormatTable), "出力形式 (table, json, markdown)")

	_ = generateCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	format, err := terminal.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	req := domain.GenerateRequest{
		Topic:         topic,
		Style:         domain.PostStyle(style),
		Format:        domain.PostFormat(postFormat),
		Platform:      domain.Platform(platform),
		UseSearch:     useSearch,
		GenerateImage: generateImage,
	}.Normalized()
	if err := req.Validate(); err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.drafter.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}

	if err := terminal.Render(cmd.OutOrStdout(), format, req, result); err != nil {
		return fmt.Errorf("結果の出力に失敗: %w", err)
	}

	if req.GenerateImage {
		written, err := terminal.WriteImage(imageOut, result)
		if err != nil {
			return err
		}
		if written {
			fmt.Fprintf(cmd.ErrOrStderr(), "画像を保存しました: %s\n", imageOut)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "画像は生成されませんでした")
		}
	}
	return nil
}
