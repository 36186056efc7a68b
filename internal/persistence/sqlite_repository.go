package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/game"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL mode reduces write latency by avoiding full fsync on every commit.
	// synchronous=NORMAL is safe with WAL and significantly faster than the default FULL.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}
	repo := &SQLiteRepository{db: db}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteRepository) UpsertGames(ctx context.Context, games []PersistedGame) (UpsertResult, error) {
	var res UpsertResult
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = r.upsertGamesTx(ctx, tx, games)
		return err
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func (r *SQLiteRepository) upsertGamesTx(ctx context.Context, tx *sql.Tx, games []PersistedGame) (UpsertResult, error) {
	res := UpsertResult{}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	for _, pg := range games {
		if pg.Log == nil || pg.Actions == nil {
			res.Skipped++
			continue
		}
		uid := pg.Source.GameUID
		if uid == "" {
			uid = GenerateGameUID(pg)
		}

		exists, err := rowExists(ctx, tx, `SELECT 1 FROM games WHERE game_uid = ? LIMIT 1`, uid)
		if err != nil {
			return UpsertResult{}, err
		}

		sum := summarize(pg)

		if _, err := tx.ExecContext(ctx, `INSERT INTO games(
			game_uid, game_name, log_type, at_client_pn, version, opts, has_timestamps,
			source_path, entry_count, action_count, unknown_count, winner_pn, finished,
			imported_at, updated_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(game_uid) DO UPDATE SET
			game_name=excluded.game_name,
			log_type=excluded.log_type,
			at_client_pn=excluded.at_client_pn,
			version=excluded.version,
			opts=excluded.opts,
			has_timestamps=excluded.has_timestamps,
			source_path=excluded.source_path,
			entry_count=excluded.entry_count,
			action_count=excluded.action_count,
			unknown_count=excluded.unknown_count,
			winner_pn=excluded.winner_pn,
			finished=excluded.finished,
			updated_at=excluded.updated_at`,
			uid,
			pg.Log.GameName,
			LogTypeOf(pg.Log),
			pg.Log.AtClientPN,
			pg.Log.Version,
			nullIfEmpty(pg.Log.OptsStr),
			boolToInt(pg.Log.HasTimestamps),
			nullIfEmpty(pg.Source.SourcePath),
			len(pg.Log.Entries),
			sum.actionCount,
			sum.unknownCount,
			sum.winnerPN,
			boolToInt(sum.finished),
			now,
			now,
		); err != nil {
			return UpsertResult{}, err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM game_actions WHERE game_uid = ?`, uid); err != nil {
			return UpsertResult{}, err
		}
		if err := insertActionsTx(ctx, tx, uid, pg.Actions); err != nil {
			return UpsertResult{}, err
		}

		if exists {
			res.Updated++
		} else {
			res.Inserted++
		}
	}

	return res, nil
}

type gameSummaryCounts struct {
	actionCount  int
	unknownCount int
	winnerPN     int
	finished     bool
}

func summarize(pg PersistedGame) gameSummaryCounts {
	s := gameSummaryCounts{winnerPN: -1}
	for _, a := range pg.Actions.Actions {
		s.actionCount++
		switch a.Type {
		case extract.ActUnknown:
			s.unknownCount++
		case extract.ActGameOver:
			s.finished = true
			s.winnerPN = a.Param1
		}
	}
	return s
}

func insertActionsTx(ctx context.Context, tx *sql.Tx, uid string, al *extract.ActionLog) error {
	for i, a := range al.Actions {
		var rs1, rs2 any
		if a.RS1 != nil {
			rs1 = a.RS1.String()
		}
		if a.RS2 != nil {
			rs2 = a.RS2.String()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO game_actions(
			game_uid, action_index, action_type, ending_game_state,
			param1, param2, param3, rs1, rs2, start_index, entry_count
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uid,
			i,
			int(a.Type),
			a.EndingGameState,
			a.Param1,
			a.Param2,
			a.Param3,
			rs1,
			rs2,
			a.StartIndex,
			len(a.Entries),
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) ListGameSummaries(ctx context.Context, f GameFilter) ([]GameSummary, int, error) {
	query := `SELECT game_uid, game_name, log_type, at_client_pn, version,
		entry_count, action_count, unknown_count, winner_pn, finished, imported_at,
		COUNT(*) OVER() AS total_count
		FROM games`
	where, args := buildGamesFilterWhere(f)
	query += where
	query += ` ORDER BY imported_at DESC, game_uid ASC`
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ListGameSummaries query: %w", err)
	}
	defer rows.Close()

	var out []GameSummary
	totalCount := 0
	for rows.Next() {
		var s GameSummary
		var importedStr string
		var finished, rowTotal int
		if err := rows.Scan(
			&s.GameUID,
			&s.GameName,
			&s.LogType,
			&s.AtClientPN,
			&s.Version,
			&s.EntryCount,
			&s.ActionCount,
			&s.UnknownCount,
			&s.WinnerPN,
			&finished,
			&importedStr,
			&rowTotal,
		); err != nil {
			return nil, 0, fmt.Errorf("ListGameSummaries scan: %w", err)
		}
		if totalCount == 0 {
			totalCount = rowTotal
		}
		s.Finished = finished == 1
		s.ImportedAt, _ = time.Parse(time.RFC3339Nano, importedStr)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("ListGameSummaries rows: %w", err)
	}
	return out, totalCount, nil
}

func (r *SQLiteRepository) CountGames(ctx context.Context, f GameFilter) (int, error) {
	where, args := buildGamesFilterWhere(f)
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games`+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SQLiteRepository) GetActionsByUID(ctx context.Context, uid string) ([]StoredAction, error) {
	exists, err := r.gameExists(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT action_index, action_type, ending_game_state,
		param1, param2, param3, rs1, rs2, start_index, entry_count
		FROM game_actions WHERE game_uid = ? ORDER BY action_index ASC`, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredAction
	for rows.Next() {
		var a StoredAction
		var typ int
		var rs1, rs2 sql.NullString
		if err := rows.Scan(
			&a.Index,
			&typ,
			&a.EndingGameState,
			&a.Param1,
			&a.Param2,
			&a.Param3,
			&rs1,
			&rs2,
			&a.StartIndex,
			&a.EntryCount,
		); err != nil {
			return nil, err
		}
		a.Type = extract.ActionType(typ)
		if rs1.Valid {
			rs, err := game.ParseResourceSet(rs1.String)
			if err != nil {
				return nil, fmt.Errorf("game %s action %d rs1: %w", uid, a.Index, err)
			}
			a.RS1 = &rs
		}
		if rs2.Valid {
			rs, err := game.ParseResourceSet(rs2.String)
			if err != nil {
				return nil, fmt.Errorf("game %s action %d rs2: %w", uid, a.Index, err)
			}
			a.RS2 = &rs
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteGame(ctx context.Context, uid string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM game_actions WHERE game_uid = ?`, uid); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM games WHERE game_uid = ?`, uid)
		return err
	})
}

func (r *SQLiteRepository) gameExists(ctx context.Context, uid string) (bool, error) {
	var probe int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM games WHERE game_uid = ? LIMIT 1`, uid).Scan(&probe)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SQLiteRepository) GetCursor(ctx context.Context, sourcePath string) (*ImportCursor, error) {
	q := `SELECT source_path, next_byte_offset, next_line_number, game_uid, is_fully_imported, updated_at
		FROM import_cursors WHERE source_path = ?`
	row := r.db.QueryRowContext(ctx, q, sourcePath)
	var c ImportCursor
	var gameUID sql.NullString
	var updatedAt string
	var isFullyImported int
	if err := row.Scan(
		&c.SourcePath,
		&c.NextByteOffset,
		&c.NextLineNumber,
		&gameUID,
		&isFullyImported,
		&updatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	c.GameUID = gameUID.String
	c.IsFullyImported = isFullyImported == 1
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		c.UpdatedAt = t
	}
	return &c, nil
}

func (r *SQLiteRepository) SaveCursor(ctx context.Context, c ImportCursor) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return saveCursorTx(ctx, tx, c)
	})
}

func (r *SQLiteRepository) MarkFullyImported(ctx context.Context, sourcePath string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE import_cursors SET is_fully_imported=1, updated_at=? WHERE source_path=?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		sourcePath,
	)
	return err
}

func (r *SQLiteRepository) SaveImportBatch(ctx context.Context, games []PersistedGame, c ImportCursor) (UpsertResult, error) {
	var res UpsertResult
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = r.upsertGamesTx(ctx, tx, games)
		if err != nil {
			return err
		}
		return saveCursorTx(ctx, tx, c)
	})
	if err != nil {
		return UpsertResult{}, err
	}
	return res, nil
}

func saveCursorTx(ctx context.Context, tx *sql.Tx, c ImportCursor) error {
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	q := `INSERT INTO import_cursors(
		source_path, next_byte_offset, next_line_number, game_uid, is_fully_imported, updated_at
	) VALUES(?, ?, ?, ?, ?, ?)
	ON CONFLICT(source_path) DO UPDATE SET
		next_byte_offset=excluded.next_byte_offset,
		next_line_number=excluded.next_line_number,
		game_uid=excluded.game_uid,
		is_fully_imported=excluded.is_fully_imported,
		updated_at=excluded.updated_at`
	_, err := tx.ExecContext(
		ctx,
		q,
		c.SourcePath,
		c.NextByteOffset,
		c.NextLineNumber,
		nullIfEmpty(c.GameUID),
		boolToInt(c.IsFullyImported),
		updatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var probe int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&probe)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func buildGamesFilterWhere(f GameFilter) (string, []any) {
	where := " WHERE 1=1"
	args := make([]any, 0, 4)
	if f.OnlyFinished {
		where += ` AND finished=1`
	}
	if f.LogType != "" {
		where += ` AND log_type = ?`
		args = append(args, f.LogType)
	}
	if f.GameName != "" {
		where += ` AND game_name = ?`
		args = append(args, f.GameName)
	}
	if f.FromTime != nil {
		where += ` AND imported_at >= ?`
		args = append(args, f.FromTime.UTC().Format(time.RFC3339Nano))
	}
	if f.ToTime != nil {
		where += ` AND imported_at <= ?`
		args = append(args, f.ToTime.UTC().Format(time.RFC3339Nano))
	}
	return where, args
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
