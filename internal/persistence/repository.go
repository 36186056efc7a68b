package persistence

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/game"
	"github.com/akvileja/soclog-tools/internal/soclog"
)

type GameFilter struct {
	FromTime *time.Time
	ToTime   *time.Time
	// LogType filters by "full" or "at_client"; empty matches both.
	LogType      string
	OnlyFinished bool
	GameName     string
	// Limit and Offset are used by ListGameSummaries for pagination.
	// Limit == 0 means no limit (return all matching rows).
	Limit  int
	Offset int
}

type GameSourceRef struct {
	SourcePath string
	StartByte  int64
	EndByte    int64
	GameUID    string
}

type PersistedGame struct {
	Log     *soclog.EventLog
	Actions *extract.ActionLog
	Source  GameSourceRef
}

// GameSummary is a lightweight game record for list display. It avoids
// loading the per-action rows needed for a full action log.
type GameSummary struct {
	GameUID      string
	GameName     string
	LogType      string
	AtClientPN   int
	Version      int
	EntryCount   int
	ActionCount  int
	UnknownCount int
	WinnerPN     int
	Finished     bool
	ImportedAt   time.Time
}

// StoredAction is one extracted action as persisted, without its entries.
type StoredAction struct {
	Index           int
	Type            extract.ActionType
	EndingGameState int
	Param1          int
	Param2          int
	Param3          int
	RS1             *game.ResourceSet
	RS2             *game.ResourceSet
	StartIndex      int
	EntryCount      int
}

type UpsertResult struct {
	Inserted int
	Updated  int
	Skipped  int
}

type ImportCursor struct {
	SourcePath      string
	NextByteOffset  int64
	NextLineNumber  int64
	GameUID         string
	IsFullyImported bool
	UpdatedAt       time.Time
}

type GameRepository interface {
	UpsertGames(ctx context.Context, games []PersistedGame) (UpsertResult, error)
	// ListGameSummaries returns lightweight game summaries for list display
	// and the total count of matching games (ignoring Limit/Offset),
	// ordered by imported_at DESC (newest first).
	ListGameSummaries(ctx context.Context, f GameFilter) ([]GameSummary, int, error)
	CountGames(ctx context.Context, f GameFilter) (int, error)
	// GetActionsByUID returns the stored actions of a single game.
	// Returns nil, nil if not found.
	GetActionsByUID(ctx context.Context, uid string) ([]StoredAction, error)
	// DeleteGame removes a stored game and its actions. Deleting a
	// missing uid is a no-op.
	DeleteGame(ctx context.Context, uid string) error
}

type CursorRepository interface {
	GetCursor(ctx context.Context, sourcePath string) (*ImportCursor, error)
	SaveCursor(ctx context.Context, c ImportCursor) error
	// MarkFullyImported atomically sets is_fully_imported=1 on an existing cursor.
	// If no cursor row exists yet the call is a no-op.
	MarkFullyImported(ctx context.Context, sourcePath string) error
}

type ImportRepository interface {
	GameRepository
	CursorRepository
}

type ImportBatchRepository interface {
	ImportRepository
	SaveImportBatch(ctx context.Context, games []PersistedGame, cursor ImportCursor) (UpsertResult, error)
}

var gameUIDNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("github.com/akvileja/soclog-tools"))

// GenerateGameUID derives a stable UID from the log header and the
// extracted actions, so re-importing the same log updates in place.
func GenerateGameUID(pg PersistedGame) string {
	if pg.Log == nil {
		payload := "src:" + pg.Source.SourcePath + "|" +
			strconv.FormatInt(pg.Source.StartByte, 10) + "|" +
			strconv.FormatInt(pg.Source.EndByte, 10)
		return uuid.NewSHA1(gameUIDNamespace, []byte(payload)).String()
	}

	b := strings.Builder{}
	b.WriteString("v1|")
	b.WriteString(pg.Log.GameName)
	b.WriteByte('|')
	appendInt(&b, pg.Log.Version)
	b.WriteByte('|')
	b.WriteString(pg.Log.OptsStr)
	b.WriteByte('|')
	b.WriteString(strconv.FormatBool(pg.Log.IsAtClient))
	b.WriteByte('|')
	appendInt(&b, pg.Log.AtClientPN)
	b.WriteByte('|')
	appendInt(&b, len(pg.Log.Entries))

	if pg.Actions != nil {
		b.WriteString("|A:")
		for _, a := range pg.Actions.Actions {
			appendInt(&b, int(a.Type))
			b.WriteByte('/')
			appendInt(&b, a.EndingGameState)
			b.WriteByte('/')
			appendInt(&b, a.Param1)
			b.WriteByte('/')
			appendInt(&b, a.Param2)
			b.WriteByte('/')
			appendInt(&b, a.Param3)
			b.WriteByte(';')
		}
	}

	return uuid.NewSHA1(gameUIDNamespace, []byte(b.String())).String()
}

func appendInt(b *strings.Builder, v int) {
	b.WriteString(strconv.Itoa(v))
}

// LogTypeOf returns the log_type column value for a log.
func LogTypeOf(log *soclog.EventLog) string {
	if log != nil && log.IsAtClient {
		return "at_client"
	}
	return "full"
}
