// Package application wires log loading, action extraction, persistence,
// and stats behind one service the CLI and watcher depend on.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/persistence"
	"github.com/akvileja/soclog-tools/internal/soclog"
	"github.com/akvileja/soclog-tools/internal/stats"
	"github.com/akvileja/soclog-tools/internal/watcher"
)

// AppService is the interface the CLI and watcher depend on for log
// import and queries. application.Service satisfies this interface.
type AppService interface {
	ImportFile(ctx context.Context, path string) (persistence.UpsertResult, error)
	ImportDir(ctx context.Context, dir string) (ImportSummary, error)
	ImportLines(ctx context.Context, sourcePath string, lines []string, startOffset, endOffset int64) error
	ListGames(ctx context.Context, f persistence.GameFilter) ([]persistence.GameSummary, int, error)
	// GameActions returns the stored actions of a single game UID.
	// Returns nil, nil if not found.
	GameActions(ctx context.Context, uid string) ([]persistence.StoredAction, error)
	DeleteGame(ctx context.Context, uid string) error
	Stats(ctx context.Context, f persistence.GameFilter) (*stats.Stats, error)
	NextOffset(ctx context.Context, path string) (int64, error)
	MarkLogFullyImported(ctx context.Context, path string)
	Close() error
}

type Service struct {
	mu          sync.RWMutex
	repo        persistence.ImportBatchRepository
	calc        *stats.Calculator
	keepPreGame bool

	// Per-source accumulated lines for watch-mode incremental import.
	buffers map[string]*sourceBuffer
}

type sourceBuffer struct {
	lines      []string
	byteOffset int64
	lineNumber int64
}

func NewService(repo persistence.ImportBatchRepository, keepPreGame bool) *Service {
	return &Service{
		repo:        repo,
		calc:        stats.NewCalculator(),
		keepPreGame: keepPreGame,
		buffers:     make(map[string]*sourceBuffer),
	}
}

// ImportSummary reports the outcome of a directory import.
type ImportSummary struct {
	Files   int
	Skipped int
	Failed  int
	Games   persistence.UpsertResult
}

// ImportFile loads one event log, extracts its actions, and saves both
// the game and a fully-imported cursor in a single transaction.
func (s *Service) ImportFile(ctx context.Context, path string) (persistence.UpsertResult, error) {
	if err := ctx.Err(); err != nil {
		return persistence.UpsertResult{}, err
	}
	slog.Debug("importing file", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return persistence.UpsertResult{}, err
	}

	pg, err := s.extractGame(path, string(data))
	if err != nil {
		return persistence.UpsertResult{}, fmt.Errorf("extract %q: %w", path, err)
	}

	cursor := persistence.ImportCursor{
		SourcePath:      path,
		NextByteOffset:  int64(len(data)),
		NextLineNumber:  int64(strings.Count(string(data), "\n")),
		GameUID:         pg.Source.GameUID,
		IsFullyImported: true,
		UpdatedAt:       time.Now(),
	}
	res, err := s.repo.SaveImportBatch(ctx, []persistence.PersistedGame{pg}, cursor)
	if err != nil {
		return persistence.UpsertResult{}, fmt.Errorf("save %q: %w", path, err)
	}
	return res, nil
}

// importJob holds the outcome of extracting a single log file.
type importJob struct {
	path   string
	game   persistence.PersistedGame
	size   int64
	lineNo int64
	err    error
}

// ImportDir imports every event log in dir. Files whose cursor says
// is_fully_imported are skipped. Extraction runs on a small worker pool;
// the DB writes are serialized.
func (s *Service) ImportDir(ctx context.Context, dir string) (ImportSummary, error) {
	sum := ImportSummary{}
	paths, err := watcher.DetectAllLogFiles(dir)
	if err != nil {
		return sum, err
	}

	toImport := make([]string, 0, len(paths))
	for _, p := range paths {
		cursor, cerr := s.repo.GetCursor(ctx, p)
		if cerr == nil && cursor != nil && cursor.IsFullyImported {
			slog.Debug("skipping fully-imported file", "path", p)
			sum.Skipped++
			continue
		}
		toImport = append(toImport, p)
	}
	sum.Files = len(toImport)
	if len(toImport) == 0 {
		return sum, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > 4 {
		workers = 4
	}
	if workers < 1 {
		workers = 1
	}
	slog.Info("importing directory", "dir", dir, "files", len(toImport), "workers", workers)

	jobCh := make(chan string, len(toImport))
	resultCh := make(chan importJob, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobCh {
				if ctx.Err() != nil {
					return
				}
				job := importJob{path: path}
				data, err := os.ReadFile(path)
				if err != nil {
					job.err = err
				} else {
					job.size = int64(len(data))
					job.lineNo = int64(strings.Count(string(data), "\n"))
					job.game, job.err = s.extractGame(path, string(data))
				}
				resultCh <- job
			}
		}()
	}

	for _, p := range toImport {
		jobCh <- p
	}
	close(jobCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Results arrive out of order; collect all, then write serially.
	byPath := make(map[string]importJob, len(toImport))
	for job := range resultCh {
		byPath[job.path] = job
	}

	for _, p := range toImport {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		job, ok := byPath[p]
		if !ok {
			sum.Failed++
			continue
		}
		if job.err != nil {
			slog.Warn("import failed", "path", p, "error", job.err)
			sum.Failed++
			continue
		}
		cursor := persistence.ImportCursor{
			SourcePath:      p,
			NextByteOffset:  job.size,
			NextLineNumber:  job.lineNo,
			GameUID:         job.game.Source.GameUID,
			IsFullyImported: true,
			UpdatedAt:       time.Now(),
		}
		res, err := s.repo.SaveImportBatch(ctx, []persistence.PersistedGame{job.game}, cursor)
		if err != nil {
			return sum, fmt.Errorf("save %q: %w", p, err)
		}
		sum.Games.Inserted += res.Inserted
		sum.Games.Updated += res.Updated
		sum.Games.Skipped += res.Skipped
	}

	slog.Info("directory import complete", "dir", dir,
		"inserted", sum.Games.Inserted, "updated", sum.Games.Updated,
		"skipped", sum.Skipped, "failed", sum.Failed)
	return sum, nil
}

// ImportLines feeds appended lines from the watcher. The whole log is
// re-extracted each time; extraction is deterministic, so re-running over
// a longer prefix only extends the stored action list.
func (s *Service) ImportLines(ctx context.Context, sourcePath string, lines []string, startOffset, endOffset int64) error {
	if len(lines) == 0 {
		return nil
	}

	s.mu.Lock()
	buf, ok := s.buffers[sourcePath]
	if !ok || buf.byteOffset != startOffset {
		// Missed a batch or first sight of this file; resync from disk.
		data, err := os.ReadFile(sourcePath)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		buf = &sourceBuffer{
			lines:      splitLines(string(data[:min(endOffset, int64(len(data)))])),
			byteOffset: endOffset,
		}
		buf.lineNumber = int64(len(buf.lines))
		s.buffers[sourcePath] = buf
	} else {
		buf.lines = append(buf.lines, lines...)
		buf.byteOffset = endOffset
		buf.lineNumber += int64(len(lines))
	}
	content := strings.Join(buf.lines, "\n")
	lineNo := buf.lineNumber
	s.mu.Unlock()

	pg, err := s.extractGame(sourcePath, content)
	cursor := persistence.ImportCursor{
		SourcePath:     sourcePath,
		NextByteOffset: endOffset,
		NextLineNumber: lineNo,
		UpdatedAt:      time.Now(),
	}
	if err != nil {
		// Logs grow while the game runs; a prefix that doesn't yet reach
		// StartGame is expected, not an import failure.
		if errors.Is(err, extract.ErrNoStartGame) || errors.Is(err, soclog.ErrNoHeader) {
			slog.Debug("log not yet extractable", "path", sourcePath, "reason", err)
			return s.repo.SaveCursor(ctx, cursor)
		}
		return fmt.Errorf("extract %q: %w", sourcePath, err)
	}

	cursor.GameUID = pg.Source.GameUID
	if _, err := s.repo.SaveImportBatch(ctx, []persistence.PersistedGame{pg}, cursor); err != nil {
		return fmt.Errorf("save %q: %w", sourcePath, err)
	}
	return nil
}

func (s *Service) extractGame(path, content string) (persistence.PersistedGame, error) {
	log, err := soclog.Load(strings.NewReader(content))
	if err != nil {
		return persistence.PersistedGame{}, err
	}
	x, err := extract.New(log, s.keepPreGame)
	if err != nil {
		return persistence.PersistedGame{}, err
	}
	actions := x.Extract()

	pg := persistence.PersistedGame{
		Log:     log,
		Actions: actions,
		Source: persistence.GameSourceRef{
			SourcePath: path,
			EndByte:    int64(len(content)),
		},
	}
	pg.Source.GameUID = persistence.GenerateGameUID(pg)
	return pg, nil
}

func (s *Service) ListGames(ctx context.Context, f persistence.GameFilter) ([]persistence.GameSummary, int, error) {
	return s.repo.ListGameSummaries(ctx, f)
}

func (s *Service) GameActions(ctx context.Context, uid string) ([]persistence.StoredAction, error) {
	return s.repo.GetActionsByUID(ctx, uid)
}

func (s *Service) DeleteGame(ctx context.Context, uid string) error {
	return s.repo.DeleteGame(ctx, uid)
}

// Stats aggregates all games matching the filter.
func (s *Service) Stats(ctx context.Context, f persistence.GameFilter) (*stats.Stats, error) {
	f.Limit = 0
	f.Offset = 0
	summaries, _, err := s.repo.ListGameSummaries(ctx, f)
	if err != nil {
		return nil, err
	}

	result := stats.NewStats()
	for _, sum := range summaries {
		stored, err := s.repo.GetActionsByUID(ctx, sum.GameUID)
		if err != nil {
			return nil, err
		}
		s.calc.Accumulate(result, actionLogFromStored(sum, stored))
	}
	return result, nil
}

func actionLogFromStored(sum persistence.GameSummary, stored []persistence.StoredAction) *extract.ActionLog {
	al := &extract.ActionLog{
		IsAtClient: sum.LogType == "at_client",
		AtClientPN: sum.AtClientPN,
		Actions:    make([]extract.Action, 0, len(stored)),
	}
	for _, sa := range stored {
		al.Actions = append(al.Actions, extract.Action{
			Type:            sa.Type,
			EndingGameState: sa.EndingGameState,
			Param1:          sa.Param1,
			Param2:          sa.Param2,
			Param3:          sa.Param3,
			RS1:             sa.RS1,
			RS2:             sa.RS2,
			StartIndex:      sa.StartIndex,
		})
	}
	return al
}

func (s *Service) NextOffset(ctx context.Context, path string) (int64, error) {
	cursor, err := s.repo.GetCursor(ctx, path)
	if err != nil {
		return 0, err
	}
	if cursor == nil {
		return 0, nil
	}
	return cursor.NextByteOffset, nil
}

// MarkLogFullyImported marks the given log file path as fully imported so
// it is never re-scanned by future directory imports.
func (s *Service) MarkLogFullyImported(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.repo.MarkFullyImported(ctx, path); err != nil {
		slog.Warn("failed to mark log as fully imported", "path", path, "error", err)
	}
}

func (s *Service) Close() error {
	type closer interface{ Close() error }
	if c, ok := s.repo.(closer); ok {
		return c.Close()
	}
	return nil
}

func splitLines(content string) []string {
	content = strings.TrimSuffix(content, "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
