package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// 超过这个大小的文件不读入内存
const maxFileSize = 256 * 1024

// FileChange 被监控文件的一次内容变更
type FileChange struct {
	Path    string
	Name    string
	Content string
	ModTime time.Time
}

// FileWatcher 笔记目录监控器：文件保存后把内容送去建索引
type FileWatcher struct {
	watcher     *fsnotify.Watcher
	watchPaths  []string
	extensions  map[string]bool
	eventChan   chan *FileChange
	stopChan    chan struct{}
	running     bool
	mu          sync.Mutex
	stopOnce    sync.Once
	debounceMap map[string]time.Time // 防抖：file -> lastSave
	debounceDur time.Duration
}

// Config 配置
type Config struct {
	WatchPaths  []string // 监控的目录列表
	Extensions  []string // 监控的文件扩展名
	BufferSize  int      // 事件缓冲区大小
	DebounceSec int      // 防抖时间（秒）
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		WatchPaths:  []string{},
		Extensions:  []string{".md", ".txt", ".org"},
		BufferSize:  256,
		DebounceSec: 2,
	}
}

// NewFileWatcher 创建监控器
func NewFileWatcher(cfg *Config) (*FileWatcher, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}

	extMap := make(map[string]bool)
	for _, ext := range cfg.Extensions {
		extMap[strings.ToLower(ext)] = true
	}

	return &FileWatcher{
		watcher:     w,
		watchPaths:  cfg.WatchPaths,
		extensions:  extMap,
		eventChan:   make(chan *FileChange, cfg.BufferSize),
		stopChan:    make(chan struct{}),
		debounceMap: make(map[string]time.Time),
		debounceDur: time.Duration(cfg.DebounceSec) * time.Second,
	}, nil
}

// AddWatchPath 添加监控路径，递归到子目录
func (w *FileWatcher) AddWatchPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("获取绝对路径失败: %w", err)
	}

	err = filepath.Walk(absPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// 跳过隐藏目录和常见的忽略目录
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") ||
				base == "node_modules" ||
				base == "vendor" {
				return filepath.SkipDir
			}

			if err := w.watcher.Add(path); err != nil {
				slog.Warn("添加监控目录失败", "path", path, "error", err)
			} else {
				slog.Debug("添加监控目录", "path", path)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("遍历目录失败: %w", err)
	}

	w.watchPaths = append(w.watchPaths, absPath)
	slog.Info("添加笔记监控路径", "path", absPath)
	return nil
}

// Start 启动监控
func (w *FileWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()
	slog.Info("文件监控器启动", "watch_paths", w.watchPaths)

	go w.watchLoop(ctx)
	return nil
}

// Stop 停止监控
func (w *FileWatcher) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		if !w.running {
			w.mu.Unlock()
			return
		}
		w.running = false
		w.mu.Unlock()

		close(w.stopChan)
		_ = w.watcher.Close()
		slog.Info("文件监控器已停止")
	})
	return nil
}

// Events 返回变更通道
func (w *FileWatcher) Events() <-chan *FileChange {
	return w.eventChan
}

// watchLoop 监控循环
func (w *FileWatcher) watchLoop(ctx context.Context) {
	defer close(w.eventChan)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("文件监控错误", "error", err)
		}
	}
}

// handleFsEvent 处理文件系统事件
func (w *FileWatcher) handleFsEvent(event fsnotify.Event) {
	// 只处理写入和新建
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	filePath := event.Name
	ext := strings.ToLower(filepath.Ext(filePath))
	if !w.extensions[ext] {
		return
	}

	// 防抖检查
	w.mu.Lock()
	lastSave, exists := w.debounceMap[filePath]
	now := time.Now()
	if exists && now.Sub(lastSave) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.debounceMap[filePath] = now
	w.mu.Unlock()

	change, err := w.readChange(filePath)
	if err != nil {
		slog.Debug("读取文件失败", "file", filePath, "error", err)
		return
	}
	if change == nil {
		return
	}

	select {
	case w.eventChan <- change:
		slog.Debug("文件变更已发送", "file", change.Name)
	default:
		slog.Warn("事件缓冲区已满，丢弃变更", "file", filePath)
	}
}

// readChange 读取变更文件的内容
func (w *FileWatcher) readChange(filePath string) (*FileChange, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.IsDir() || info.Size() == 0 {
		return nil, nil
	}
	if info.Size() > maxFileSize {
		slog.Debug("文件过大，跳过索引", "file", filePath, "size", info.Size())
		return nil, nil
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return &FileChange{
		Path:    filePath,
		Name:    filepath.Base(filePath),
		Content: string(content),
		ModTime: info.ModTime(),
	}, nil
}
