package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ByLCY/docflow/binding"
	"github.com/ByLCY/docflow/extract"
	"github.com/ByLCY/docflow/fonts"
	"github.com/ByLCY/docflow/imaging"
	"github.com/ByLCY/docflow/layout"
	"github.com/ByLCY/docflow/renderer"
	canvasrenderer "github.com/ByLCY/docflow/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/docflow/renderer/fpdf"
	"github.com/ByLCY/docflow/stylesheet"
)

var word2pdfCmd = &cobra.Command{
	Use:   "word2pdf <in.docx|in.html|in.txt>",
	Short: "把 Word、HTML 或纯文本排版为 PDF",
	Long: `word2pdf 抽取输入文档的标题、段落、列表与换行，按样式表排版并输出 PDF。
表格、图片与复杂样式不会保留。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		debugPath, _ := cmd.Flags().GetString("debug")
		dataJSON, _ := cmd.Flags().GetString("data")

		p, err := newPipeline(viper.GetString("stylesheet"), viper.GetString("renderer"), dataJSON)
		if err != nil {
			return err
		}
		if out == "" {
			out = filepath.Join(filepath.Dir(args[0]), imaging.OutputName(args[0], ".pdf"))
		}
		if err := p.convert(args[0], out, debugPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s\n", out)
		return nil
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout <in>",
	Short: "只排版，输出布局结果 JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		dataJSON, _ := cmd.Flags().GetString("data")
		measure, _ := cmd.Flags().GetString("measure")

		p, err := newPipeline(viper.GetString("stylesheet"), viper.GetString("renderer"), dataJSON)
		if err != nil {
			return err
		}
		if err := p.selectMeasure(measure); err != nil {
			return err
		}
		res, err := p.layoutFile(args[0])
		if err != nil {
			return err
		}
		if out == "" {
			return layout.EncodeJSON(res, cmd.OutOrStdout())
		}
		return writeDebug(res, out)
	},
}

func init() {
	word2pdfCmd.Flags().StringP("out", "o", "", "PDF 输出路径（默认与输入同目录同名）")
	word2pdfCmd.Flags().String("debug", "", "布局调试 JSON 输出路径")
	word2pdfCmd.Flags().String("data", "", "绑定到 ${...} 占位符的 JSON 数据")

	layoutCmd.Flags().StringP("out", "o", "", "JSON 输出路径（默认标准输出）")
	layoutCmd.Flags().String("data", "", "绑定到 ${...} 占位符的 JSON 数据")
	layoutCmd.Flags().String("measure", "renderer", "文本测量方式：renderer 或 shaper（HarfBuzz 整形）")

	rootCmd.AddCommand(word2pdfCmd, layoutCmd)
}

// pipeline 串联抽取、数据绑定、布局与渲染。
type pipeline struct {
	sheet    *stylesheet.Sheet
	renderer renderer.Renderer
	measure  layout.MeasureFunc
	data     any
}

func newPipeline(sheetPath, rendererName, dataJSON string) (*pipeline, error) {
	sheet := stylesheet.Default()
	if sheetPath != "" {
		s, err := stylesheet.LoadFile(sheetPath)
		if err != nil {
			return nil, err
		}
		sheet = s
	}
	r, err := newRenderer(rendererName, sheet)
	if err != nil {
		return nil, err
	}
	data, err := binding.Decode([]byte(dataJSON))
	if err != nil {
		return nil, err
	}
	return &pipeline{sheet: sheet, renderer: r, measure: r.Measure, data: data}, nil
}

func newRenderer(name string, sheet *stylesheet.Sheet) (renderer.Renderer, error) {
	switch strings.ToLower(name) {
	case "", "canvas":
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			BaseDir: sheet.BaseDir,
			Fonts:   sheet.Fonts,
		}), nil
	case "fpdf":
		return fpdfrenderer.NewRendererWithOptions(fpdfrenderer.Options{
			BaseDir: sheet.BaseDir,
			Unicode: viper.GetBool("fpdf.unicode") || len(sheet.Fonts) > 0,
			Fonts:   sheet.Fonts,
		}), nil
	default:
		return nil, fmt.Errorf("未知渲染器 %q（可选 canvas、fpdf）", name)
	}
}

// selectMeasure 按 --measure 选择测量方式。
func (p *pipeline) selectMeasure(name string) error {
	switch strings.ToLower(name) {
	case "", "renderer":
		p.measure = p.renderer.Measure
		return nil
	case "shaper":
		return p.useShaper()
	default:
		return fmt.Errorf("未知测量方式 %q（可选 renderer、shaper）", name)
	}
}

// useShaper 改用 HarfBuzz 整形测量，字体与渲染器使用同一组资源。
func (p *pipeline) useShaper() error {
	sources := map[layout.Font][]byte{}
	for name, res := range renderer.MergeFonts(renderer.DefaultFonts(), p.sheet.Fonts) {
		data, err := renderer.LoadFontBytes(p.sheet.BaseDir, res)
		if err != nil {
			return err
		}
		sources[name] = data
	}
	shaper, err := fonts.NewShaper(sources)
	if err != nil {
		return err
	}
	p.measure = shaper.Measure
	return nil
}

func (p *pipeline) layoutFile(inPath string) (*layout.Result, error) {
	ex, err := extract.ForPath(inPath)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("无法打开输入文件 %s: %w", inPath, err)
	}
	defer file.Close()

	doc, err := extract.ExtractDocument(ex, file)
	if err != nil {
		return nil, fmt.Errorf("抽取 %s 失败: %w", inPath, err)
	}

	blocks := binding.Blocks(doc.Blocks, p.data)
	res, err := layout.Build(blocks, p.sheet.BuildOptions(p.measure))
	if err != nil {
		return nil, fmt.Errorf("布局计算失败: %w", err)
	}
	res.Meta = binding.Meta(mergeMeta(doc.Meta, p.sheet.Meta, inPath), p.data)
	return res, nil
}

func (p *pipeline) convert(inPath, outPath, debugPath string) error {
	res, err := p.layoutFile(inPath)
	if err != nil {
		return err
	}
	if debugPath != "" {
		if err := writeDebug(res, debugPath); err != nil {
			return err
		}
	}

	pdfBytes, err := p.renderer.Render(res)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	return writeOutput(outPath, pdfBytes)
}

// mergeMeta 以文档自身的元信息为底，样式表中写出的字段优先。
func mergeMeta(doc, sheet layout.DocumentMeta, inPath string) layout.DocumentMeta {
	out := doc
	if sheet.Title != "" {
		out.Title = sheet.Title
	}
	if sheet.Author != "" {
		out.Author = sheet.Author
	}
	if sheet.Subject != "" {
		out.Subject = sheet.Subject
	}
	if sheet.Creator != "" {
		out.Creator = sheet.Creator
	}
	if len(sheet.Keywords) > 0 {
		out.Keywords = sheet.Keywords
	}
	if out.Title == "" {
		out.Title = strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	}
	if out.Creator == "" {
		out.Creator = "docflow " + version
	}
	return out
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}
