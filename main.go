// Package main 是 docflow 命令行入口：Word/HTML/文本转 PDF、图片转 PDF 与 JPEG 转换。
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ByLCY/docflow/imaging"
	"github.com/ByLCY/docflow/layout"
)

// version is set at build time via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "docflow",
	Short: "本地文档与图片转换工具",
	Long: `docflow 在本地把 Word(.docx)、HTML 与纯文本排版为 PDF，
并提供图片转 PDF 与 JPEG 重新编码。排版使用贪心换行与自动分页，
页面尺寸、字体与各类块的样式由样式表（.sheet/.dflow 或 .yaml）配置。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log-level"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "配置文件（默认 ./docflow.yaml 或 ~/.config/docflow/docflow.yaml）")
	pf.String("stylesheet", "", "样式表文件（.sheet、.dflow、.yaml）")
	pf.String("renderer", "canvas", "PDF 渲染器：canvas 或 fpdf")
	pf.String("log-level", "warn", "日志级别：debug、info、warn、error")

	for _, key := range []string{"stylesheet", "renderer", "log-level"} {
		_ = viper.BindPFlag(key, pf.Lookup(key))
	}
	viper.SetDefault("jpeg.quality", imaging.DefaultQuality)
	viper.SetDefault("jpeg.max-dimension", 0)
	viper.SetDefault("fpdf.unicode", false)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docflow")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docflow"))
		}
	}

	viper.SetEnvPrefix("DOCFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "使用配置文件:", viper.ConfigFileUsed())
	}
}

// setupLogging 把 slog 文本日志输出到 stderr 并交给排版引擎。
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("无效的日志级别 %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	layout.SetLogger(slog.New(handler))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
