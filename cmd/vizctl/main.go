// cmd/vizctl/main.go
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Corphon/DataVisualizer/internal/app"
	"github.com/Corphon/DataVisualizer/internal/config"
	"github.com/Corphon/DataVisualizer/internal/models"
	"github.com/Corphon/DataVisualizer/internal/services"
	"github.com/Corphon/DataVisualizer/internal/storage"
	"github.com/Corphon/DataVisualizer/internal/utils"
	"github.com/spf13/cobra"
)

var (
	backendURL string
	liveExport bool
	outDir     string
	quiet      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vizctl",
		Short: "Turn tabular chart input into chart images and documents",
		Long: `vizctl validates chart input (line, bar or pie), transforms it into a chart
and exports it as png, svg, pdf, json, csv or xlsx. With --backend the
transform and document exports go through a running DataVisualizer server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Server base URL, e.g. http://localhost:5000 (default: in-process)")
	rootCmd.PersistentFlags().BoolVar(&liveExport, "live", true, "With --backend, export the submitted chart instead of the canned samples")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out-dir", "o", "exports", "Directory for exported files")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Do not print notifications")

	rootCmd.AddCommand(newRenderCmd(), newInteractiveCmd(), newHelpCenterCmd(), newServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initLogging 结构化日志只写文件，控制台留给交互输出
func initLogging() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logFile := filepath.Join(cfg.LogDir, fmt.Sprintf("vizctl_%s.log", time.Now().Format("2006-01-02")))
	if err := utils.InitLogger(logFile); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️ 无法初始化日志: %v\n", err)
		return nil
	}
	logger := utils.GetLogger()
	logger.SetOutput(nil)
	logger.SetLogLevel(utils.ParseLogLevel(cfg.LogLevel))
	return nil
}

// session 一次命令行会话使用的流水线和导出目录
type session struct {
	pipeline *services.PipelineService
	sink     services.DirectorySink
	store    *storage.FileStorage
}

func newSession() (*session, error) {
	store, err := storage.NewFileStorage(outDir)
	if err != nil {
		return nil, err
	}

	notifier := services.MultiNotifier{services.NewLogNotifier()}
	if !quiet {
		notifier = append(notifier, services.NotifierFunc(printNotification))
	}

	documents := services.NewDocumentService(0, 0)
	var transformer services.Transformer = services.LocalTransformer{}
	var fetcher services.DocumentFetcher = services.LocalDocumentFetcher{Documents: documents}
	if backendURL != "" {
		client := services.NewProcessClient(backendURL, 30*time.Second)
		transformer = services.RemoteTransformer{Client: client}
		fetcher = services.HTTPDocumentFetcher{Client: client, Live: liveExport}
	}

	gate := services.NewActionGate()
	metrics := utils.NewPipelineMetrics(nil)
	exporter := services.NewExportService(fetcher, gate, notifier, metrics)

	return &session{
		pipeline: services.NewPipelineService(services.PipelineOptions{
			Transformer: transformer,
			Bridge:      services.NewMemoryBridge(),
			Exporter:    exporter,
			Gate:        gate,
			Notifier:    notifier,
			Metrics:     metrics,
		}),
		sink:  services.DirectorySink{Store: store},
		store: store,
	}, nil
}

func (s *session) Close() {
	s.store.Close()
}

// export 导出当前图表并写入 out-dir
func (s *session) export(cmd *cobra.Command, format models.ExportFormat) (*models.ExportResult, error) {
	view, err := s.pipeline.OpenCurrent()
	if err != nil {
		return nil, err
	}
	return s.pipeline.Exporter().ExportTo(cmd.Context(), format, view.Spec, view.Handle, s.sink)
}

func printNotification(n models.Notification) {
	icon := "✅"
	switch n.Level {
	case models.NotifyDestructive:
		icon = "❌"
	case models.NotifyInfo:
		icon = "ℹ️"
	}
	fmt.Printf("%s %s: %s\n", icon, n.Title, n.Description)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (same as cmd/server)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := app.Initialize(cfg.DataDir); err != nil {
				return err
			}
			fmt.Printf("🌐 服务器启动在端口 %s\n", cfg.Port)
			return app.Run()
		},
	}
}

const cliBoxMaxWidth = 90

func printBox(title, content string) {
	wrappedLines := wrapContentForBox(content, cliBoxMaxWidth)
	maxWidth := utf8.RuneCountInString(title)
	for _, line := range wrappedLines {
		if w := utf8.RuneCountInString(line); w > maxWidth {
			maxWidth = w
		}
	}
	border := strings.Repeat("─", maxWidth+2)
	fmt.Println("┌" + border + "┐")
	if title != "" {
		fmt.Printf("│ %s │\n", padRight(title, maxWidth))
		fmt.Println("├" + border + "┤")
	}
	for _, line := range wrappedLines {
		fmt.Printf("│ %s │\n", padRight(line, maxWidth))
	}
	fmt.Println("└" + border + "┘")
}

func wrapContentForBox(content string, maxWidth int) []string {
	var result []string
	for _, rawLine := range strings.Split(content, "\n") {
		runes := []rune(strings.TrimRight(rawLine, " "))
		for len(runes) > maxWidth {
			result = append(result, string(runes[:maxWidth]))
			runes = runes[maxWidth:]
		}
		result = append(result, string(runes))
	}
	return result
}

func padRight(text string, width int) string {
	current := utf8.RuneCountInString(text)
	if current >= width {
		return text
	}
	return text + strings.Repeat(" ", width-current)
}
