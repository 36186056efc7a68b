package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/game"
)

func actionLog(actions ...extract.Action) *extract.ActionLog {
	return &extract.ActionLog{Actions: actions}
}

func TestCalculateEmpty(t *testing.T) {
	calc := NewCalculator()
	s := calc.Calculate(nil)

	assert.NotNil(t, s)
	assert.Equal(t, 0, s.TotalActions)
	assert.Equal(t, 0.0, s.UnknownRatio())
	assert.Equal(t, -1, s.WinnerPN)
}

func TestCalculateCountsByType(t *testing.T) {
	calc := NewCalculator()
	al := actionLog(
		extract.Action{Type: extract.ActTurnBegins, Param1: 2},
		extract.Action{Type: extract.ActRollDice, Param1: 8},
		extract.Action{Type: extract.ActBuildPiece, Param1: int(game.PieceRoad), Param2: 0x67, Param3: 2},
		extract.Action{Type: extract.ActUnknown},
		extract.Action{Type: extract.ActEndTurn},
	)

	s := calc.Calculate([]*extract.ActionLog{al})

	assert.Equal(t, 5, s.TotalActions)
	assert.Equal(t, 1, s.UnknownActions)
	assert.Equal(t, 1, s.ByType[extract.ActRollDice])
	assert.Equal(t, 1, s.DiceRolls[8])
	assert.Equal(t, 1, s.Turns)
	assert.InDelta(t, 0.2, s.UnknownRatio(), 1e-9)
}

func TestCalculateAttributesActionsToCurrentPlayer(t *testing.T) {
	calc := NewCalculator()
	al := actionLog(
		extract.Action{Type: extract.ActTurnBegins, Param1: 1},
		extract.Action{Type: extract.ActBuyDevCard, Param1: game.DevCardKnight},
		extract.Action{Type: extract.ActTurnBegins, Param1: 3},
		extract.Action{Type: extract.ActPlayDevCard, Param1: game.DevCardMono},
		extract.Action{Type: extract.ActBuildPiece, Param1: int(game.PieceSettlement), Param2: 0x45, Param3: 3},
	)

	s := calc.Calculate([]*extract.ActionLog{al})

	assert.Equal(t, 1, s.ByPlayer[1].DevBought)
	assert.Equal(t, 0, s.ByPlayer[1].DevPlayed)
	assert.Equal(t, 1, s.ByPlayer[3].DevPlayed)
	assert.Equal(t, 1, s.ByPlayer[3].PiecesBuilt[game.PieceSettlement])
	assert.Equal(t, 1, s.ByPlayer[1].Turns)
	assert.Equal(t, 1, s.ByPlayer[3].Turns)
}

func TestCalculateTradesAndRobbery(t *testing.T) {
	calc := NewCalculator()
	al := actionLog(
		extract.Action{Type: extract.ActTurnBegins, Param1: 0},
		extract.Action{Type: extract.ActTradeBank},
		extract.Action{Type: extract.ActTradeMakeOffer, Param1: 0},
		extract.Action{Type: extract.ActTradeAcceptOffer, Param1: 0, Param2: 2},
		extract.Action{Type: extract.ActRobPlayer, Param1: 2},
	)

	s := calc.Calculate([]*extract.ActionLog{al})

	assert.Equal(t, 1, s.BankTrades)
	assert.Equal(t, 1, s.PlayerTrades)
	assert.Equal(t, 1, s.ByPlayer[0].OffersMade)
	assert.Equal(t, 1, s.ByPlayer[0].TradesMade)
	assert.Equal(t, 1, s.ByPlayer[2].TimesRobbed)
}

func TestCalculateGameOverSetsWinner(t *testing.T) {
	calc := NewCalculator()
	al := actionLog(
		extract.Action{Type: extract.ActTurnBegins, Param1: 2},
		extract.Action{Type: extract.ActGameOver, Param1: 2},
	)

	s := calc.Calculate([]*extract.ActionLog{al})

	assert.Equal(t, 1, s.FinishedGames)
	assert.Equal(t, 2, s.WinnerPN)
	assert.Equal(t, 1, s.ByPlayer[2].Wins)
}

func TestAccumulateMergesMultipleGames(t *testing.T) {
	calc := NewCalculator()
	s := NewStats()

	calc.Accumulate(s, actionLog(
		extract.Action{Type: extract.ActTurnBegins, Param1: 1},
		extract.Action{Type: extract.ActRollDice, Param1: 6},
	))
	calc.Accumulate(s, actionLog(
		extract.Action{Type: extract.ActTurnBegins, Param1: 1},
		extract.Action{Type: extract.ActRollDice, Param1: 6},
		extract.Action{Type: extract.ActRollDice, Param1: 9},
		extract.Action{Type: extract.ActGameOver, Param1: 1},
	))

	assert.Equal(t, 2, s.GamesSeen)
	assert.Equal(t, 1, s.FinishedGames)
	assert.Equal(t, 2, s.DiceRolls[6])
	assert.Equal(t, 1, s.DiceRolls[9])
	assert.Equal(t, 2, s.ByPlayer[1].Turns)
	assert.Equal(t, 1, s.ByPlayer[1].Wins)
}

func TestAccumulateNilLogIsNoop(t *testing.T) {
	calc := NewCalculator()
	s := NewStats()
	calc.Accumulate(s, nil)

	assert.Equal(t, 0, s.GamesSeen)
	assert.Equal(t, 0, s.TotalActions)
}
