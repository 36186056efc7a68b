package extract

import (
	"errors"
	"fmt"

	"github.com/akvileja/soclog-tools/internal/game"
	"github.com/akvileja/soclog-tools/internal/soclog"
)

// Errors returned by New when the log's required opening entries are
// missing or inconsistent.
var (
	ErrEmptyLog          = errors.New("extract: event log is empty")
	ErrInvalidAtClientPN = errors.New("extract: at-client log needs player number >= 0")
	ErrExpectedVersion   = errors.New("extract: log must start with Version")
	ErrExpectedNewGame   = errors.New("extract: expected NewGame or NewGameWithOptions")
	ErrNoStartGame       = errors.New("extract: no StartGame found in log")
)

// seqStartTypesFull lists the message types that can begin an action
// sequence in a full (server-side) log.
var seqStartTypesFull = typeSet(
	soclog.MsgTurn, soclog.MsgRollDice,
	soclog.MsgPutPiece, soclog.MsgBuildRequest, soclog.MsgCancelBuildRequest, soclog.MsgMovePiece,
	soclog.MsgBuyDevCardRequest, soclog.MsgPlayDevCardRequest,
	soclog.MsgDiscard, soclog.MsgPickResources, soclog.MsgChoosePlayer, soclog.MsgMoveRobber,
	soclog.MsgChoosePlayerRequest, soclog.MsgRobberyResult, soclog.MsgBankTrade,
	soclog.MsgMakeOffer, soclog.MsgClearOffer, soclog.MsgRejectOffer, soclog.MsgAcceptOffer,
	soclog.MsgEndTurn, soclog.MsgGameStats, soclog.MsgDevCardAction,
)

// seqStartTypesAtClient is the same for an at-client log, which never
// contains other players' client requests.
var seqStartTypesAtClient = typeSet(
	soclog.MsgDiceResult, soclog.MsgPutPiece, soclog.MsgRevealFogHex, soclog.MsgCancelBuildRequest,
	soclog.MsgPlayerElement, soclog.MsgPlayerElements,
	soclog.MsgMovePiece, soclog.MsgDevCardAction, soclog.MsgDiscard, soclog.MsgPickResources,
	soclog.MsgGameState, soclog.MsgMoveRobber, soclog.MsgChoosePlayerRequest,
	soclog.MsgChoosePlayer, soclog.MsgRobberyResult,
	soclog.MsgBankTrade, soclog.MsgMakeOffer, soclog.MsgClearOffer,
	soclog.MsgRejectOffer, soclog.MsgAcceptOffer,
	soclog.MsgTurn, soclog.MsgGameStats,
)

// ignoreTypes are chat and cosmetic messages skipped while scanning.
var ignoreTypes = typeSet(
	soclog.MsgGameTextMsg, soclog.MsgGameServerText, soclog.MsgChangeFace,
)

// msgAs asserts an entry's message to a concrete type, tolerating nil
// entries so callers can chain it after next() without a separate check.
func msgAs[M soclog.Message](e *soclog.Entry) (M, bool) {
	var zero M
	if e == nil || e.Message == nil {
		return zero, false
	}
	m, ok := e.Message.(M)
	return m, ok
}

func typeSet(types ...soclog.MessageType) map[soclog.MessageType]bool {
	m := make(map[soclog.MessageType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

// cursorState is the extractor's restorable position: the next log index,
// the tracked current player and game state, and (in snapshots) the length
// of the accumulated sequence. The live cursor keeps seqLen == -1; only
// snapshot() fills it in.
type cursorState struct {
	nextIdx      int
	seqLen       int
	playerNumber int
	gameState    int
}

// Extractor recognizes action sequences in one event log. It is not safe
// for concurrent use; callers hold one Extractor per extraction.
type Extractor struct {
	log        *soclog.EventLog
	actLog     *ActionLog
	atClient   bool
	atClientPN int
	seqStart   map[soclog.MessageType]bool

	st          cursorState
	seq         []soclog.Entry
	seqStartIdx int
}

// New prepares an Extractor and validates the log's opening entries: a
// Version, then NewGame or NewGameWithOptions, then it seeks forward to
// StartGame. With keepPreGame, those skipped entries become a
// LOG_START_TO_STARTGAME action; otherwise they are discarded.
func New(log *soclog.EventLog, keepPreGame bool) (*Extractor, error) {
	if log == nil || len(log.Entries) == 0 {
		return nil, ErrEmptyLog
	}
	if log.IsAtClient && log.AtClientPN < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAtClientPN, log.AtClientPN)
	}

	x := &Extractor{
		log:        log,
		atClient:   log.IsAtClient,
		atClientPN: -1,
		seqStart:   seqStartTypesFull,
		seq:        []soclog.Entry{},
	}
	x.st = cursorState{seqLen: -1, playerNumber: -1}
	if x.atClient {
		x.atClientPN = log.AtClientPN
		x.seqStart = seqStartTypesAtClient
	}
	x.actLog = newActionLog(x.atClient, x.atClientPN)

	e := x.next()
	if e == nil || e.MessageType() != soclog.MsgVersion {
		return nil, ErrExpectedVersion
	}

	e = x.next()
	if e == nil || (e.MessageType() != soclog.MsgNewGame && e.MessageType() != soclog.MsgNewGameWithOptions) {
		return nil, ErrExpectedNewGame
	}

	// Seek forward to all:StartGame; initial placement sequences follow it.
	for {
		e = x.next()
		if e == nil {
			return nil, ErrNoStartGame
		}
		if e.MessageType() == soclog.MsgStartGame && e.IsToAll() {
			if keepPreGame {
				x.actLog.add(Action{
					Type:            ActLogStartToStartGame,
					EndingGameState: x.st.gameState,
					Entries:         x.resetSeq(),
				})
			} else {
				x.resetSeq()
			}
			break
		}
	}

	return x, nil
}

// next returns the next non-ignored message entry and advances the cursor,
// or nil at end of log. Every visited entry, ignored or not, is added to
// the accumulating sequence. Tracked player number and game state update
// from Turn, GameState, StartGame, and GameElements(CURRENT_PLAYER).
func (x *Extractor) next() *soclog.Entry {
	for x.st.nextIdx < len(x.log.Entries) {
		e := &x.log.Entries[x.st.nextIdx]
		x.st.nextIdx++
		x.seq = append(x.seq, *e)

		if e.Message == nil {
			continue
		}
		switch msg := e.Message.(type) {
		case soclog.GameState:
			x.st.gameState = msg.State
		case soclog.Turn:
			x.st.playerNumber = msg.PlayerNumber
			x.st.gameState = msg.GameState
		case soclog.StartGame:
			x.st.gameState = msg.GameState
		case soclog.GameElements:
			for i, et := range msg.ElementTypes {
				if et == game.GameElemCurrentPlayer {
					x.st.playerNumber = msg.Values[i]
					break
				}
			}
		}

		if !ignoreTypes[e.Message.Type()] {
			return e
		}
	}
	return nil
}

// peekNext returns what next would return, without advancing.
func (x *Extractor) peekNext() *soclog.Entry {
	prev := x.snapshot()
	e := x.next()
	x.backtrackTo(prev)
	return e
}

// nextIfType advances past the next entry only if it has the wanted
// message type; otherwise the cursor is left unchanged and nil returned.
func (x *Extractor) nextIfType(t soclog.MessageType) *soclog.Entry {
	prev := x.snapshot()
	e := x.next()
	if e == nil || e.Message.Type() != t {
		x.backtrackTo(prev)
		return nil
	}
	return e
}

// nextIfGameStateOrOver advances past an all:GameState entry, or past the
// game-over pair all:GameElements(CURRENT_PLAYER) + all:GameState(OVER),
// returning the GameState entry. On the pair, the tracked player number
// becomes the winner from GameElements. Anything else backtracks and
// returns nil.
func (x *Extractor) nextIfGameStateOrOver() *soclog.Entry {
	prev := x.snapshot()
	sawElems := false

	e := x.next()
	if e == nil {
		x.backtrackTo(prev)
		return nil
	}
	if ge, ok := e.Message.(soclog.GameElements); ok {
		if len(ge.ElementTypes) != 1 || ge.ElementTypes[0] != game.GameElemCurrentPlayer || !e.IsToAll() {
			x.backtrackTo(prev)
			return nil
		}
		sawElems = true
		x.st.playerNumber = ge.Values[0]
		e = x.next()
	}

	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState ||
		(sawElems && x.st.gameState != game.StateOver) {
		x.backtrackTo(prev)
		return nil
	}
	return e
}

// snapshot copies the cursor for a later backtrackTo.
func (x *Extractor) snapshot() cursorState {
	s := x.st
	s.seqLen = len(x.seq)
	return s
}

// backtrackTo restores a snapshot taken earlier in the same extraction.
// Passing a forward position or a non-snapshot state is a programming
// error and panics.
func (x *Extractor) backtrackTo(to cursorState) {
	if to.seqLen < 0 {
		panic("extract: backtrackTo needs a snapshot, not the live cursor")
	}
	if to.nextIdx > x.st.nextIdx {
		panic(fmt.Sprintf("extract: backtrack forward: toIdx=%d > current %d", to.nextIdx, x.st.nextIdx))
	}
	if to.seqLen > len(x.seq) {
		panic(fmt.Sprintf("extract: backtrack forward: toSeqLen=%d > current %d", to.seqLen, len(x.seq)))
	}

	x.st.nextIdx = to.nextIdx
	x.seq = x.seq[:to.seqLen]
	x.st.playerNumber = to.playerNumber
	x.st.gameState = to.gameState
}

// resetSeq hands off the accumulated sequence and starts a fresh one at
// the cursor's current position.
func (x *Extractor) resetSeq() []soclog.Entry {
	prev := x.seq
	x.seq = []soclog.Entry{}
	x.seqStartIdx = x.st.nextIdx
	return prev
}

// finish builds an Action from the accumulated sequence and resets for
// the next one.
func (x *Extractor) finish(t ActionType, p1, p2, p3 int, rs1, rs2 *game.ResourceSet) *Action {
	start := x.seqStartIdx
	return &Action{
		Type:            t,
		EndingGameState: x.st.gameState,
		Param1:          p1,
		Param2:          p2,
		Param3:          p3,
		RS1:             rs1,
		RS2:             rs2,
		Entries:         x.resetSeq(),
		StartIndex:      start,
	}
}

// Extract runs the main recognition loop until end of log and returns the
// action log. Entries not claimed by any recognizer are gathered into
// UNKNOWN actions. Extract can be called again after appending entries to
// the source log.
func (x *Extractor) Extract() *ActionLog {
	for {
		// Invariant here: the previous sequence was just finished, the
		// accumulator is empty, and seqStartIdx == the cursor index.
		prevGameState := x.st.gameState
		e := x.next()
		if e == nil {
			break
		}

		var act *Action
		if x.seqStart[e.Message.Type()] {
			act = x.dispatch(e, prevGameState)
		}

		if act != nil {
			x.actLog.add(*act)
			continue
		}

		// Gather entries into an UNKNOWN action until the next
		// sequence-starting message or end of log.
		eState := x.snapshot()
		for {
			e = x.next()
			if e == nil {
				break
			}
			if x.seqStart[e.Message.Type()] {
				x.backtrackTo(eState)
				break
			}
			eState = x.snapshot()
		}

		start := x.seqStartIdx
		x.actLog.add(Action{
			Type:            ActUnknown,
			EndingGameState: x.st.gameState,
			Entries:         x.resetSeq(),
			StartIndex:      start,
		})

		if e == nil {
			break
		}
	}

	return x.actLog
}

// dispatch tries the recognizer for a sequence-starting entry. A nil
// result means the sequence wasn't recognized and the caller falls back
// to UNKNOWN gathering; recognizers leave the cursor wherever they
// stopped, which for most failures is mid-sequence, matching how the
// unknown span then swallows the rest.
func (x *Extractor) dispatch(e *soclog.Entry, prevGameState int) *Action {
	switch e.Message.Type() {
	case soclog.MsgTurn:
		return x.extractTurnBegins(e)

	case soclog.MsgRollDice:
		if !x.atClient {
			return x.extractRollDice(e)
		}

	case soclog.MsgDiceResult:
		if x.atClient {
			return x.extractRollDice(e)
		}

	case soclog.MsgPutPiece:
		if (e.FromClient && e.PN == x.st.playerNumber) ||
			(x.atClient && e.IsToAll() && x.st.gameState < game.StateRollOrCard) {
			return x.extractBuildPiece(e, false)
		}

	case soclog.MsgBuildRequest:
		if e.FromClient && !x.atClient {
			if e.PN == x.st.playerNumber {
				return x.extractBuildPiece(e, true)
			} else if e.PN >= 0 {
				return x.extractAskSpecialBuilding(e)
			}
		}

	case soclog.MsgRevealFogHex:
		if x.atClient {
			return x.extractFromRevealFogHex(e)
		}

	case soclog.MsgCancelBuildRequest:
		return x.extractCancelBuiltPiece(e)

	case soclog.MsgPlayerElement, soclog.MsgPlayerElements:
		if x.atClient {
			return x.extractFromPlayerElements(e)
		}

	case soclog.MsgMovePiece:
		return x.extractMovePiece(e)

	case soclog.MsgBuyDevCardRequest:
		if !x.atClient {
			return x.extractBuyDevCard(e)
		}

	case soclog.MsgPlayDevCardRequest:
		if !x.atClient {
			return x.extractPlayDevCard(e)
		}

	case soclog.MsgDiscard:
		return x.extractDiscard(e)

	case soclog.MsgPickResources:
		return x.extractChooseFreeResources(e)

	case soclog.MsgGameState:
		if x.atClient && prevGameState == game.StateWaitingForRobberOrPirate {
			return x.extractChooseMoveRobberOrPirate(e)
		}

	case soclog.MsgChoosePlayer:
		if x.st.gameState == game.StateWaitingForRobClothOrResource {
			return x.extractChooseRobClothOrResource(e)
		} else if !x.atClient && x.st.gameState == game.StateWaitingForRobberOrPirate {
			return x.extractChooseMoveRobberOrPirate(e)
		}

	case soclog.MsgMoveRobber:
		return x.extractMoveRobberOrPirate(e)

	case soclog.MsgChoosePlayerRequest:
		if x.st.gameState == game.StateWaitingForRobChoosePlayer {
			return x.extractChooseRobberyVictim(e)
		}

	case soclog.MsgRobberyResult:
		return x.extractRobPlayer(e)

	case soclog.MsgBankTrade:
		return x.extractTradeBank(e)

	case soclog.MsgMakeOffer:
		return x.extractTradeMakeOffer(e)

	case soclog.MsgClearOffer:
		if co, ok := e.Message.(soclog.ClearOffer); ok && x.atClient && co.PlayerNumber == -1 {
			return x.extractEndTurn(e)
		}
		return x.extractTradeClearOffer(e)

	case soclog.MsgRejectOffer:
		return x.extractTradeRejectOffer(e)

	case soclog.MsgAcceptOffer:
		return x.extractTradeAcceptOffer(e)

	case soclog.MsgEndTurn:
		if !x.atClient {
			return x.extractEndTurn(e)
		}

	case soclog.MsgGameStats:
		return x.extractGameOver(e)

	case soclog.MsgDevCardAction:
		if x.st.gameState == game.StateOver {
			return x.extractGameOver(e)
		} else if x.atClient {
			return x.extractPlayDevCard(e)
		}
	}

	return nil
}
