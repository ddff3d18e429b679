package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ByLCY/docflow/imaging"
)

var img2pdfCmd = &cobra.Command{
	Use:   "img2pdf <image>",
	Short: "把一张图片转换为单页 PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = filepath.Join(filepath.Dir(args[0]), imaging.OutputName(args[0], ".pdf"))
		}
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("无法打开图片 %s: %w", args[0], err)
		}
		defer file.Close()

		pdfBytes, err := imaging.ToPDF(file)
		if err != nil {
			return err
		}
		if err := writeOutput(out, pdfBytes); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已生成 PDF：%s\n", out)
		return nil
	},
}

var jpegCmd = &cobra.Command{
	Use:   "jpeg <image>",
	Short: "把图片重新编码为 JPEG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = filepath.Join(filepath.Dir(args[0]), imaging.OutputName(args[0], ".jpg"))
			if same, _ := filepath.Abs(out); sameFile(same, args[0]) {
				out = filepath.Join(filepath.Dir(args[0]), imaging.OutputName(args[0], ".converted.jpg"))
			}
		}
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("无法打开图片 %s: %w", args[0], err)
		}
		defer file.Close()

		var buf bytes.Buffer
		opts := imaging.JPEGOptions{
			Quality:      viper.GetInt("jpeg.quality"),
			MaxDimension: viper.GetInt("jpeg.max-dimension"),
		}
		if err := imaging.ReencodeJPEG(file, &buf, opts); err != nil {
			return err
		}
		if err := writeOutput(out, buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已生成 JPEG：%s\n", out)
		return nil
	},
}

func sameFile(absOut, in string) bool {
	absIn, err := filepath.Abs(in)
	return err == nil && absIn == absOut
}

func init() {
	img2pdfCmd.Flags().StringP("out", "o", "", "PDF 输出路径（默认与输入同目录同名）")

	jpegCmd.Flags().StringP("out", "o", "", "JPEG 输出路径（默认与输入同目录同名）")
	jpegCmd.Flags().Int("quality", imaging.DefaultQuality, "JPEG 质量 1..100")
	jpegCmd.Flags().Int("max-dimension", 0, "长边最大像素数，0 表示不缩放")
	_ = viper.BindPFlag("jpeg.quality", jpegCmd.Flags().Lookup("quality"))
	_ = viper.BindPFlag("jpeg.max-dimension", jpegCmd.Flags().Lookup("max-dimension"))

	rootCmd.AddCommand(img2pdfCmd, jpegCmd)
}
