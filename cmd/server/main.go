// cmd/server/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Corphon/DataVisualizer/internal/app"
	"github.com/Corphon/DataVisualizer/internal/config"
	"github.com/Corphon/DataVisualizer/internal/di"
)

func main() {
	log.Println("🚀 启动 DataVisualizer 服务器...")

	// 1. 首先加载基础配置
	baseConfig, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	log.Printf("✅ 基础配置加载完成，端口: %s", baseConfig.Port)

	// 2. 创建必要的目录
	if err := createDirectories(baseConfig); err != nil {
		log.Fatalf("❌ %v", err)
	}
	log.Println("✅ 目录结构创建完成")

	// 3. 初始化配置、日志、服务与路由
	if err := app.Initialize(baseConfig.DataDir); err != nil {
		log.Fatalf("❌ 初始化应用失败: %v", err)
	}
	log.Printf("✅ 所有服务初始化完成，服务数量: %d", len(di.GetContainer().GetNames()))

	if err := performHealthCheck(); err != nil {
		log.Printf("⚠️ 服务健康检查警告: %v", err)
	}

	// 4. 启动服务器
	log.Printf("🌐 服务器启动在端口 %s", baseConfig.Port)
	log.Printf("🔗 处理接口: http://localhost:%s/api/process-data", baseConfig.Port)
	log.Printf("🔗 提示推送: ws://localhost:%s/ws/notifications", baseConfig.Port)

	if err := app.Run(); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

// 健康检查函数
func performHealthCheck() error {
	container := di.GetContainer()

	criticalServices := []string{di.ServicePipeline, di.ServiceStub, di.ServiceExporter, di.ServiceConfig}
	for _, serviceName := range criticalServices {
		if !container.Has(serviceName) {
			return fmt.Errorf("关键服务未注册: %s", serviceName)
		}
	}

	log.Println("✅ 服务健康检查通过")
	return nil
}

// createDirectories 创建应用所需的目录结构
func createDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.DataDir,
		filepath.Join(cfg.DataDir, app.ChartsDir),
		filepath.Join(cfg.DataDir, app.ExportsDir),
		cfg.LogDir,
	}
	if cfg.StaticDir != "" {
		dirs = append(dirs, cfg.StaticDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建目录失败 %s: %w", dir, err)
		}
	}
	return nil
}
