package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/soclog"
)

type inMemoryEntry struct {
	log        *soclog.EventLog
	actions    *extract.ActionLog
	source     GameSourceRef
	importedAt time.Time
}

type MemoryRepository struct {
	mu      sync.RWMutex
	games   map[string]inMemoryEntry
	cursors map[string]ImportCursor
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		games:   make(map[string]inMemoryEntry),
		cursors: make(map[string]ImportCursor),
	}
}

func (r *MemoryRepository) UpsertGames(_ context.Context, games []PersistedGame) (UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.upsertGamesLocked(games), nil
}

func (r *MemoryRepository) upsertGamesLocked(games []PersistedGame) UpsertResult {
	res := UpsertResult{}
	for _, pg := range games {
		if pg.Log == nil || pg.Actions == nil {
			res.Skipped++
			continue
		}
		uid := pg.Source.GameUID
		if uid == "" {
			uid = GenerateGameUID(pg)
		}
		importedAt := time.Now()
		if prev, ok := r.games[uid]; ok {
			res.Updated++
			importedAt = prev.importedAt
		} else {
			res.Inserted++
		}
		r.games[uid] = inMemoryEntry{
			log:        pg.Log,
			actions:    cloneActionLog(pg.Actions),
			source:     pg.Source,
			importedAt: importedAt,
		}
	}
	return res
}

func (r *MemoryRepository) ListGameSummaries(_ context.Context, f GameFilter) ([]GameSummary, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]GameSummary, 0, len(r.games))
	for uid, entry := range r.games {
		sum := summarize(PersistedGame{Log: entry.log, Actions: entry.actions})
		if f.OnlyFinished && !sum.finished {
			continue
		}
		if f.LogType != "" && LogTypeOf(entry.log) != f.LogType {
			continue
		}
		if f.GameName != "" && entry.log.GameName != f.GameName {
			continue
		}
		if f.FromTime != nil && entry.importedAt.Before(*f.FromTime) {
			continue
		}
		if f.ToTime != nil && entry.importedAt.After(*f.ToTime) {
			continue
		}
		out = append(out, GameSummary{
			GameUID:      uid,
			GameName:     entry.log.GameName,
			LogType:      LogTypeOf(entry.log),
			AtClientPN:   entry.log.AtClientPN,
			Version:      entry.log.Version,
			EntryCount:   len(entry.log.Entries),
			ActionCount:  sum.actionCount,
			UnknownCount: sum.unknownCount,
			WinnerPN:     sum.winnerPN,
			Finished:     sum.finished,
			ImportedAt:   entry.importedAt,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].ImportedAt.Equal(out[j].ImportedAt) {
			return out[i].ImportedAt.After(out[j].ImportedAt)
		}
		return out[i].GameUID < out[j].GameUID
	})

	total := len(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = nil
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *MemoryRepository) CountGames(ctx context.Context, f GameFilter) (int, error) {
	f.Limit = 0
	f.Offset = 0
	_, total, err := r.ListGameSummaries(ctx, f)
	return total, err
}

func (r *MemoryRepository) GetActionsByUID(_ context.Context, uid string) ([]StoredAction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.games[uid]
	if !ok {
		return nil, nil
	}
	out := make([]StoredAction, 0, len(entry.actions.Actions))
	for i, a := range entry.actions.Actions {
		sa := StoredAction{
			Index:           i,
			Type:            a.Type,
			EndingGameState: a.EndingGameState,
			Param1:          a.Param1,
			Param2:          a.Param2,
			Param3:          a.Param3,
			StartIndex:      a.StartIndex,
			EntryCount:      len(a.Entries),
		}
		if a.RS1 != nil {
			rs := *a.RS1
			sa.RS1 = &rs
		}
		if a.RS2 != nil {
			rs := *a.RS2
			sa.RS2 = &rs
		}
		out = append(out, sa)
	}
	return out, nil
}

func (r *MemoryRepository) DeleteGame(_ context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.games, uid)
	return nil
}

func (r *MemoryRepository) GetCursor(_ context.Context, sourcePath string) (*ImportCursor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.cursors[sourcePath]
	if !ok {
		return nil, nil
	}
	copyCursor := c
	return &copyCursor, nil
}

func (r *MemoryRepository) SaveCursor(_ context.Context, c ImportCursor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	r.cursors[c.SourcePath] = c
	return nil
}

func (r *MemoryRepository) MarkFullyImported(_ context.Context, sourcePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.cursors[sourcePath]
	if !ok {
		return nil
	}
	c.IsFullyImported = true
	c.UpdatedAt = time.Now()
	r.cursors[sourcePath] = c
	return nil
}

func (r *MemoryRepository) SaveImportBatch(_ context.Context, games []PersistedGame, c ImportCursor) (UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := r.upsertGamesLocked(games)
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	r.cursors[c.SourcePath] = c
	return res, nil
}

func cloneActionLog(al *extract.ActionLog) *extract.ActionLog {
	if al == nil {
		return nil
	}
	copyLog := *al
	copyLog.Actions = make([]extract.Action, len(al.Actions))
	for i, a := range al.Actions {
		copyAct := a
		copyAct.Entries = append([]soclog.Entry(nil), a.Entries...)
		if a.RS1 != nil {
			rs := *a.RS1
			copyAct.RS1 = &rs
		}
		if a.RS2 != nil {
			rs := *a.RS2
			copyAct.RS2 = &rs
		}
		copyLog.Actions[i] = copyAct
	}
	return &copyLog
}
