// internal/storage/file_storage.go
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNotExist 文件不存在
var ErrNotExist = fs.ErrNotExist

// FileStorage 提供文件存储服务
type FileStorage struct {
	BaseDir string

	// 并发控制
	fileLocks sync.Map // 文件级别锁 path -> *sync.RWMutex

	// 简单缓存
	cache        map[string]*CacheEntry
	cacheMutex   sync.RWMutex
	cacheExpiry  time.Duration
	maxCacheSize int

	stopOnce sync.Once
	stop     chan struct{}
}

// CacheEntry 缓存条目
type CacheEntry struct {
	Data      []byte
	Timestamp time.Time
}

// NewFileStorage 创建文件存储服务
func NewFileStorage(baseDir string) (*FileStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}

	s := &FileStorage{
		BaseDir:      baseDir,
		cache:        make(map[string]*CacheEntry),
		cacheExpiry:  5 * time.Minute,
		maxCacheSize: 32,
		stop:         make(chan struct{}),
	}

	go s.cacheCleanupLoop(2 * time.Minute)

	return s, nil
}

// Close 停止后台缓存清理
func (s *FileStorage) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// 获取文件锁
func (s *FileStorage) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := s.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

// Path 返回文件在存储目录下的完整路径
func (s *FileStorage) Path(dirPath, filename string) string {
	return filepath.Join(s.BaseDir, dirPath, filename)
}

// WriteFile 原子写入文件（先写临时文件再重命名）
func (s *FileStorage) WriteFile(dirPath, filename string, content []byte) error {
	fullDirPath := filepath.Join(s.BaseDir, dirPath)
	fullPath := filepath.Join(fullDirPath, filename)

	lock := s.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(fullDirPath, 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("保存临时文件失败: %w", err)
	}

	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("保存文件失败: %w", err)
	}

	s.invalidateCache(fullPath)
	return nil
}

// WriteJSON 序列化后原子写入
func (s *FileStorage) WriteJSON(dirPath, filename string, data interface{}) error {
	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}
	return s.WriteFile(dirPath, filename, content)
}

// ReadFile 读取文件，优先命中缓存；文件不存在时错误链包含 ErrNotExist
func (s *FileStorage) ReadFile(dirPath, filename string) ([]byte, error) {
	fullPath := filepath.Join(s.BaseDir, dirPath, filename)

	if data, ok := s.cached(fullPath); ok {
		return data, nil
	}

	lock := s.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	// 双重检查缓存
	if data, ok := s.cached(fullPath); ok {
		return data, nil
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}

	s.updateCache(fullPath, content)
	return content, nil
}

// ReadJSON 读取并解析JSON文件
func (s *FileStorage) ReadJSON(dirPath, filename string, v interface{}) error {
	content, err := s.ReadFile(dirPath, filename)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(content, v); err != nil {
		return fmt.Errorf("解析JSON失败: %w", err)
	}
	return nil
}

// Exists 检查文件是否存在
func (s *FileStorage) Exists(dirPath, filename string) bool {
	_, err := os.Stat(filepath.Join(s.BaseDir, dirPath, filename))
	return err == nil
}

// Remove 删除文件，不存在时不报错
func (s *FileStorage) Remove(dirPath, filename string) error {
	fullPath := filepath.Join(s.BaseDir, dirPath, filename)

	lock := s.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("删除文件失败: %w", err)
	}

	s.invalidateCache(fullPath)
	return nil
}

func (s *FileStorage) cached(path string) ([]byte, bool) {
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	entry, exists := s.cache[path]
	if !exists || time.Since(entry.Timestamp) >= s.cacheExpiry {
		return nil, false
	}
	return entry.Data, true
}

// 缓存管理
func (s *FileStorage) updateCache(path string, data []byte) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	s.cache[path] = &CacheEntry{
		Data:      data,
		Timestamp: time.Now(),
	}

	// 超出上限时删除最老的条目
	if len(s.cache) > s.maxCacheSize {
		var oldestKey string
		var oldestTime time.Time
		for key, entry := range s.cache {
			if oldestKey == "" || entry.Timestamp.Before(oldestTime) {
				oldestKey = key
				oldestTime = entry.Timestamp
			}
		}
		delete(s.cache, oldestKey)
	}
}

func (s *FileStorage) cacheCleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanupExpiredCache()
		}
	}
}

// 清理过期缓存
func (s *FileStorage) cleanupExpiredCache() {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	now := time.Now()
	for path, entry := range s.cache {
		if now.Sub(entry.Timestamp) > s.cacheExpiry {
			delete(s.cache, path)
		}
	}
}

// invalidateCache 清除指定路径的缓存
func (s *FileStorage) invalidateCache(path string) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	delete(s.cache, path)
}
