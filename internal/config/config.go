// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// 当前配置的单例实例
var (
	currentConfig *AppConfig
	configMutex   sync.RWMutex
	configFile    string
)

// AppConfig 包含应用程序的所有配置
type AppConfig struct {
	// 基础配置
	Port      string `json:"port"`
	DataDir   string `json:"data_dir"`
	StaticDir string `json:"static_dir"`
	LogDir    string `json:"log_dir"`
	LogLevel  string `json:"log_level"`
	DebugMode bool   `json:"debug_mode"`

	// 处理与导出
	BackendURL      string        `json:"backend_url"`
	ProcessDelay    time.Duration `json:"process_delay"`
	RemoteTransform bool          `json:"remote_transform"`
	LiveExports     bool          `json:"live_exports"`
	ExportWidth     int           `json:"export_width"`
	ExportHeight    int           `json:"export_height"`
}

// Config 存储应用配置
type Config struct {
	Port            string
	DataDir         string
	StaticDir       string
	LogDir          string
	LogLevel        string
	DebugMode       bool
	BackendURL      string
	ProcessDelay    time.Duration
	RemoteTransform bool
	LiveExports     bool
	ExportWidth     int
	ExportHeight    int
}

// Load 从环境变量加载配置
func Load() (*Config, error) {
	// 尝试加载.env文件（可选）
	godotenv.Load()

	config := &Config{
		Port:            getEnv("PORT", "5000"),
		DataDir:         getEnvPath("DATA_DIR", "data"),
		StaticDir:       getEnv("STATIC_DIR", "static"),
		LogDir:          getEnvPath("LOG_DIR", "logs"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DebugMode:       getEnvBool("DEBUG_MODE", true),
		BackendURL:      getEnv("BACKEND_URL", ""),
		ProcessDelay:    getEnvDuration("PROCESS_DELAY", 500*time.Millisecond),
		RemoteTransform: getEnvBool("REMOTE_TRANSFORM", false),
		LiveExports:     getEnvBool("LIVE_EXPORTS", true),
		ExportWidth:     getEnvInt("EXPORT_WIDTH", 800),
		ExportHeight:    getEnvInt("EXPORT_HEIGHT", 600),
	}

	if config.RemoteTransform && config.BackendURL == "" {
		// 没有后端地址时无法远程处理，退回本地转换
		log.Println("警告: REMOTE_TRANSFORM 已开启但未设置 BACKEND_URL，将使用本地转换")
		config.RemoteTransform = false
	}

	return config, nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvPath 获取环境变量表示的路径，如果不存在则返回默认值
func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)

	// 确保目录存在
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err = os.MkdirAll(path, 0755)
		if err != nil {
			fmt.Printf("警告: 创建目录失败 %s: %v\n", path, err)
		}
	}

	return path
}

// getEnvBool 获取布尔类型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt 获取整数类型环境变量，非法值使用默认值
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("警告: %s=%q 不是合法的正整数，使用默认值 %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDuration 获取时长类型环境变量，例如 "500ms"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		log.Printf("警告: %s=%q 不是合法的时长，使用默认值 %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func fromBase(base *Config) *AppConfig {
	return &AppConfig{
		Port:            base.Port,
		DataDir:         base.DataDir,
		StaticDir:       base.StaticDir,
		LogDir:          base.LogDir,
		LogLevel:        base.LogLevel,
		DebugMode:       base.DebugMode,
		BackendURL:      base.BackendURL,
		ProcessDelay:    base.ProcessDelay,
		RemoteTransform: base.RemoteTransform,
		LiveExports:     base.LiveExports,
		ExportWidth:     base.ExportWidth,
		ExportHeight:    base.ExportHeight,
	}
}

// savedExportSettings config.json 中通过设置接口修改的部分
type savedExportSettings struct {
	LiveExports  *bool `json:"live_exports"`
	ExportWidth  int   `json:"export_width"`
	ExportHeight int   `json:"export_height"`
}

// InitConfig 初始化配置管理器
func InitConfig(dataDir string) error {
	configFile = filepath.Join(dataDir, "config.json")

	// 加载基础配置
	baseConfig, err := Load()
	if err != nil {
		return err
	}

	configMutex.Lock()
	defer configMutex.Unlock()

	currentConfig = fromBase(baseConfig)

	// 尝试从文件加载已保存的导出设置，其余配置始终以环境变量为准
	if data, err := os.ReadFile(configFile); err == nil {
		var saved savedExportSettings
		if json.Unmarshal(data, &saved) == nil {
			if saved.ExportWidth > 0 {
				currentConfig.ExportWidth = saved.ExportWidth
			}
			if saved.ExportHeight > 0 {
				currentConfig.ExportHeight = saved.ExportHeight
			}
			if saved.LiveExports != nil {
				currentConfig.LiveExports = *saved.LiveExports
			}
		}
	}

	// 保存初始配置到文件
	return saveLocked()
}

// GetCurrentConfig 返回当前配置的副本
func GetCurrentConfig() *AppConfig {
	configMutex.RLock()
	defer configMutex.RUnlock()

	if currentConfig == nil {
		// 未初始化时直接使用环境变量
		baseConfig, _ := Load()
		return fromBase(baseConfig)
	}

	configCopy := *currentConfig
	return &configCopy
}

// UpdateExportConfig 更新导出相关配置
func UpdateExportConfig(width, height int, liveExports bool) error {
	configMutex.Lock()
	defer configMutex.Unlock()

	if currentConfig == nil {
		return fmt.Errorf("配置系统未初始化")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("导出尺寸必须为正数: %dx%d", width, height)
	}

	currentConfig.ExportWidth = width
	currentConfig.ExportHeight = height
	currentConfig.LiveExports = liveExports

	return saveLocked()
}

// SaveConfig 保存当前配置到文件
func SaveConfig() error {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return saveLocked()
}

func saveLocked() error {
	if currentConfig == nil {
		return fmt.Errorf("没有配置可保存")
	}

	// 确保目录存在
	dir := filepath.Dir(configFile)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}

	data, err := json.MarshalIndent(currentConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	return os.WriteFile(configFile, data, 0644)
}
