package watcher

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// LogWatcher monitors a directory of game event logs for new files and
// appended lines. Servers append to a game's log while the game runs, so
// a per-file read offset is kept and only new lines are reported.
type LogWatcher struct {
	Dir      string
	offsets  map[string]int64
	watcher  *fsnotify.Watcher
	done     chan struct{}
	mu       sync.Mutex
	readMu   sync.Mutex
	stopOnce sync.Once

	onNewData    func(path string, lines []string, startOffset, endOffset int64)
	onNewLogFile func(path string)
	onError      func(err error)
}

type WatcherConfig struct {
	OnNewData    func(path string, lines []string, startOffset, endOffset int64)
	OnNewLogFile func(path string)
	OnError      func(err error)
}

// NewLogWatcher creates a watcher for the given directory
func NewLogWatcher(dir string, cfg WatcherConfig) (*LogWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &LogWatcher{
		Dir:          dir,
		offsets:      make(map[string]int64),
		watcher:      w,
		done:         make(chan struct{}),
		onNewData:    cfg.OnNewData,
		onNewLogFile: cfg.OnNewLogFile,
		onError:      cfg.OnError,
	}, nil
}

// Start begins watching for file changes
func (lw *LogWatcher) Start() error {
	slog.Info("watcher starting", "dir", lw.Dir)
	if err := lw.watcher.Add(lw.Dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", lw.Dir, err)
	}

	// Read existing content first, except for files the caller already
	// positioned with SetOffset (e.g. EOF after an initial import).
	for _, p := range listLogFiles(lw.Dir) {
		lw.mu.Lock()
		_, known := lw.offsets[p]
		lw.mu.Unlock()
		if !known {
			if err := lw.readNewContent(p); err != nil {
				_ = err // non-fatal
			}
		}
	}

	go lw.watchLoop()
	return nil
}

// Stop stops the watcher
func (lw *LogWatcher) Stop() {
	lw.stopOnce.Do(func() {
		slog.Info("watcher stopped", "dir", lw.Dir)
		close(lw.done)
		_ = lw.watcher.Close()
	})
}

// SetOffset sets the initial read offset for one file (for resuming)
func (lw *LogWatcher) SetOffset(path string, offset int64) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.offsets[filepath.Clean(path)] = offset
}

func (lw *LogWatcher) watchLoop() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-lw.done:
			return
		case event, ok := <-lw.watcher.Events:
			if !ok {
				return
			}
			if !isEventLogFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Create) {
				lw.mu.Lock()
				_, known := lw.offsets[filepath.Clean(event.Name)]
				lw.mu.Unlock()
				if !known && lw.onNewLogFile != nil {
					lw.onNewLogFile(event.Name)
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if err := lw.readNewContent(event.Name); err != nil && lw.onError != nil {
					lw.onError(err)
				}
			}
		case err, ok := <-lw.watcher.Errors:
			if !ok {
				return
			}
			if lw.onError != nil {
				lw.onError(err)
			}
		case <-ticker.C:
			// Periodic poll as fallback
			for _, p := range listLogFiles(lw.Dir) {
				if err := lw.readNewContent(p); err != nil && lw.onError != nil {
					lw.onError(err)
				}
			}
		}
	}
}

func (lw *LogWatcher) readNewContent(path string) error {
	lw.readMu.Lock()
	defer lw.readMu.Unlock()

	path = filepath.Clean(path)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	// Check file size
	info, err := f.Stat()
	if err != nil {
		return err
	}

	lw.mu.Lock()
	defer lw.mu.Unlock()
	offset := lw.offsets[path]
	if info.Size() < offset {
		offset = 0
	}
	if info.Size() <= offset {
		lw.offsets[path] = offset
		return nil // No new content
	}
	startOffset := offset

	if _, err := f.Seek(startOffset, 0 /* io.SeekStart */); err != nil {
		return err
	}

	endOffset := info.Size()
	lw.offsets[path] = endOffset

	// Stream lines without loading the entire new content into memory at once.
	lines := make([]string, 0, 512)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if len(lines) > 0 && lw.onNewData != nil {
		slog.Debug("new data detected", "path", path, "lines", len(lines))
		lw.onNewData(path, lines, startOffset, endOffset)
	}

	return nil
}

// listLogFiles builds the list of event log files found in dir. It does
// not sort the results.
func listLogFiles(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.soclog"))
	if err != nil {
		return nil
	}
	return matches
}

// DetectLatestLogFile finds the most recent event log file in dir
func DetectLatestLogFile(dir string) (string, error) {
	candidates := listLogFiles(dir)

	if len(candidates) == 0 {
		return "", fmt.Errorf("no event log files found in %s", dir)
	}

	sortByModTimeDesc(candidates)
	return candidates[0], nil
}

// DetectAllLogFiles finds all event log files in dir sorted newest first
func DetectAllLogFiles(dir string) ([]string, error) {
	candidates := listLogFiles(dir)

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no event log files found in %s", dir)
	}

	sortByModTimeDesc(candidates)
	return candidates, nil
}

// sortByModTimeDesc sorts paths newest-first using a single os.Stat per file,
// avoiding the O(n²) stat calls that arise from calling os.Stat inside the
// sort comparator.
func sortByModTimeDesc(paths []string) {
	modTimes := make(map[string]time.Time, len(paths))
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil {
			modTimes[p] = info.ModTime()
		}
	}
	sort.Slice(paths, func(i, j int) bool {
		return modTimes[paths[i]].After(modTimes[paths[j]])
	})
}

func isEventLogFile(path string) bool {
	return filepath.Ext(path) == ".soclog"
}
