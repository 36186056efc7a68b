// Package extract reconstructs high-level game actions from a recorded
// event log. It walks the log's message sequences with a backtracking
// cursor, recognizes the message grammar of each player action, and emits
// an ordered ActionLog. Unrecognized stretches of the log become UNKNOWN
// actions so that every entry is accounted for.
package extract

import (
	"fmt"
	"math"
	"strings"

	"github.com/akvileja/soclog-tools/internal/game"
	"github.com/akvileja/soclog-tools/internal/soclog"
)

// ActionType identifies one kind of recognized game action. The numeric
// codes are stable and have gaps so related types can be added later.
type ActionType int

const (
	// ActUnknown is a contiguous run of entries no recognizer claimed.
	ActUnknown ActionType = 1

	// ActLogStartToStartGame holds everything from the start of the log
	// through the StartGame entry, when the extractor is asked to keep it.
	ActLogStartToStartGame ActionType = 10

	// ActTurnBegins is the start of a player's turn.
	// Param1 = player number.
	ActTurnBegins ActionType = 20

	// ActRollDice is a dice roll and everything distributed because of it.
	// Param1 = dice total.
	ActRollDice ActionType = 30

	// ActBuildPiece is a piece placement.
	// Param1 = piece type, Param2 = coordinate, Param3 = player number.
	// RS1, if set, holds resources revealed from fog hexes.
	ActBuildPiece ActionType = 40

	// ActCancelBuiltPiece cancels the piece being placed.
	// Param1 = piece type, Param3 = player number.
	ActCancelBuiltPiece ActionType = 50

	// ActMovePiece moves a ship.
	// Param1 = piece type, Param2 = from coordinate, Param3 = to coordinate.
	// RS1, if set, holds resources revealed from fog hexes.
	ActMovePiece ActionType = 60

	// ActBuyDevCard is a development card purchase.
	// Param1 = card type (game.DevCardUnknown if hidden from this log),
	// Param2 = cards remaining in the deck.
	ActBuyDevCard ActionType = 70

	// ActPlayDevCard is a played development card.
	// Param1 = card type. For Road Building, Param2 and Param3 are the two
	// placed edge coordinates, negative for ships, Unplaced if canceled.
	// For Discovery, RS1 = picked resources. For Monopoly, RS1 = gained
	// resources (nil if none).
	ActPlayDevCard ActionType = 80

	// ActDiscard is one player's discard.
	// Param1 = player number, RS1 = discarded resources.
	ActDiscard ActionType = 90

	// ActChooseFreeResources is a gold-hex or Discovery free pick.
	// RS1 = chosen resources.
	ActChooseFreeResources ActionType = 100

	// ActChooseMoveRobberOrPirate is the robber-vs-pirate choice.
	// Param1 = 1 robber, 2 pirate, 0 unknown.
	ActChooseMoveRobberOrPirate ActionType = 110

	// ActMoveRobberOrPirate is the robber or pirate move.
	// Param1 = 1 robber, 2 pirate. Param2 = hex coordinate.
	ActMoveRobberOrPirate ActionType = 120

	// ActChooseRobberyVictim is the victim choice.
	// Param1 = chosen player, or -2 for "choose to move robber instead".
	ActChooseRobberyVictim ActionType = 130

	// ActChooseRobClothOrResource is the scenario cloth-vs-resource choice.
	// Param1 = 1 resource, 2 cloth, 0 unknown.
	ActChooseRobClothOrResource ActionType = 140

	// ActRobPlayer is a completed robbery.
	// Param1 = victim player. Either RS1 = stolen resources, or
	// Param2 = stolen player-element type with Param3 = amount.
	ActRobPlayer ActionType = 150

	// ActTradeBank is a bank or port trade.
	// RS1 = given to bank, RS2 = received.
	ActTradeBank ActionType = 160

	// ActTradeMakeOffer is an announced trade offer.
	// Param1 = offering player, RS1 = would give, RS2 = would get.
	ActTradeMakeOffer ActionType = 170

	// ActTradeClearOffer clears one player's offer.
	// Param1 = player number.
	ActTradeClearOffer ActionType = 180

	// ActTradeRejectOffer is a player rejecting current offers.
	// Param1 = rejecting player.
	ActTradeRejectOffer ActionType = 190

	// ActTradeAcceptOffer is a completed player trade.
	// Param1 = offering player, Param2 = accepting player,
	// RS1 = resources to accepting player, RS2 = to offering player.
	ActTradeAcceptOffer ActionType = 200

	// ActAskSpecialBuilding is a Special Building request by another player.
	// Param1 = requesting player.
	ActAskSpecialBuilding ActionType = 210

	// ActEndTurn is the current player ending their turn.
	ActEndTurn ActionType = 220

	// ActGameOver is the end-of-game wrapup.
	// Param1 = winning player.
	ActGameOver ActionType = 230
)

func (t ActionType) String() string {
	switch t {
	case ActUnknown:
		return "UNKNOWN"
	case ActLogStartToStartGame:
		return "LOG_START_TO_STARTGAME"
	case ActTurnBegins:
		return "TURN_BEGINS"
	case ActRollDice:
		return "ROLL_DICE"
	case ActBuildPiece:
		return "BUILD_PIECE"
	case ActCancelBuiltPiece:
		return "CANCEL_BUILT_PIECE"
	case ActMovePiece:
		return "MOVE_PIECE"
	case ActBuyDevCard:
		return "BUY_DEV_CARD"
	case ActPlayDevCard:
		return "PLAY_DEV_CARD"
	case ActDiscard:
		return "DISCARD"
	case ActChooseFreeResources:
		return "CHOOSE_FREE_RESOURCES"
	case ActChooseMoveRobberOrPirate:
		return "CHOOSE_MOVE_ROBBER_OR_PIRATE"
	case ActMoveRobberOrPirate:
		return "MOVE_ROBBER_OR_PIRATE"
	case ActChooseRobberyVictim:
		return "CHOOSE_ROBBERY_VICTIM"
	case ActChooseRobClothOrResource:
		return "CHOOSE_ROB_CLOTH_OR_RESOURCE"
	case ActRobPlayer:
		return "ROB_PLAYER"
	case ActTradeBank:
		return "TRADE_BANK"
	case ActTradeMakeOffer:
		return "TRADE_MAKE_OFFER"
	case ActTradeClearOffer:
		return "TRADE_CLEAR_OFFER"
	case ActTradeRejectOffer:
		return "TRADE_REJECT_OFFER"
	case ActTradeAcceptOffer:
		return "TRADE_ACCEPT_OFFER"
	case ActAskSpecialBuilding:
		return "ASK_SPECIAL_BUILDING"
	case ActEndTurn:
		return "END_TURN"
	case ActGameOver:
		return "GAME_OVER"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Unplaced marks a Road Building placement that was canceled or never made.
const Unplaced = math.MaxInt32

// Action is one recognized game action and the log entries it was
// extracted from. Param and resource-set meanings depend on Type.
type Action struct {
	Type ActionType

	// EndingGameState is the game state when the action finished.
	EndingGameState int

	Param1 int
	Param2 int
	Param3 int

	RS1 *game.ResourceSet
	RS2 *game.ResourceSet

	// Entries is the contiguous sub-sequence of log entries this action
	// was extracted from, including ignored chat entries.
	Entries []soclog.Entry

	// StartIndex is the index of Entries[0] within the source log.
	StartIndex int
}

func (a Action) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[gs=%d", a.Type, a.EndingGameState)
	if a.Param1 != 0 || a.Param2 != 0 || a.Param3 != 0 {
		fmt.Fprintf(&b, " p1=%d p2=%d p3=%d", a.Param1, a.Param2, a.Param3)
	}
	if a.RS1 != nil {
		fmt.Fprintf(&b, " rs1=%s", a.RS1)
	}
	if a.RS2 != nil {
		fmt.Fprintf(&b, " rs2=%s", a.RS2)
	}
	fmt.Fprintf(&b, " entries=%d at=%d]", len(a.Entries), a.StartIndex)
	return b.String()
}

// ActionLog is the ordered result of one extraction.
type ActionLog struct {
	// IsAtClient is true when the source log held only what one client saw.
	IsAtClient bool
	// AtClientPN is that client's player number, -1 for full logs.
	AtClientPN int

	Actions []Action
}

func newActionLog(isAtClient bool, atClientPN int) *ActionLog {
	return &ActionLog{IsAtClient: isAtClient, AtClientPN: atClientPN}
}

func (al *ActionLog) add(a Action) {
	al.Actions = append(al.Actions, a)
}
