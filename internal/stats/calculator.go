// Package stats aggregates extracted action logs into per-game and
// per-player summaries.
package stats

import (
	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/game"
)

// Calculator computes statistics from extracted action logs
type Calculator struct{}

// NewCalculator creates a new stats calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Calculate computes full statistics from a list of action logs
func (c *Calculator) Calculate(logs []*extract.ActionLog) *Stats {
	s := NewStats()
	for _, al := range logs {
		c.Accumulate(s, al)
	}
	return s
}

// Accumulate folds one action log into s. The actor of most actions is
// the player whose turn it is, tracked from TURN_BEGINS.
func (c *Calculator) Accumulate(s *Stats, al *extract.ActionLog) {
	if al == nil {
		return
	}
	s.GamesSeen++

	current := -1
	for _, a := range al.Actions {
		s.TotalActions++
		s.ByType[a.Type]++

		switch a.Type {
		case extract.ActUnknown:
			s.UnknownActions++

		case extract.ActTurnBegins:
			current = a.Param1
			s.Turns++
			c.ensurePlayer(s, current).Turns++

		case extract.ActRollDice:
			s.DiceRolls[a.Param1]++

		case extract.ActBuildPiece:
			ps := c.ensurePlayer(s, a.Param3)
			ps.PiecesBuilt[game.PieceType(a.Param1)]++

		case extract.ActMovePiece:
			if current >= 0 {
				c.ensurePlayer(s, current).PiecesMoved++
			}

		case extract.ActBuyDevCard:
			if current >= 0 {
				c.ensurePlayer(s, current).DevBought++
			}

		case extract.ActPlayDevCard:
			if current >= 0 {
				c.ensurePlayer(s, current).DevPlayed++
			}

		case extract.ActDiscard:
			c.ensurePlayer(s, a.Param1).Discards++

		case extract.ActRobPlayer:
			if a.Param1 >= 0 {
				c.ensurePlayer(s, a.Param1).TimesRobbed++
			}

		case extract.ActTradeBank:
			s.BankTrades++

		case extract.ActTradeMakeOffer:
			c.ensurePlayer(s, a.Param1).OffersMade++

		case extract.ActTradeAcceptOffer:
			s.PlayerTrades++
			c.ensurePlayer(s, a.Param1).TradesMade++

		case extract.ActGameOver:
			s.FinishedGames++
			s.WinnerPN = a.Param1
			if a.Param1 >= 0 {
				c.ensurePlayer(s, a.Param1).Wins++
			}
		}
	}
}

func (c *Calculator) ensurePlayer(s *Stats, pn int) *PlayerStats {
	ps, ok := s.ByPlayer[pn]
	if !ok {
		ps = &PlayerStats{
			PlayerNumber: pn,
			PiecesBuilt:  make(map[game.PieceType]int),
		}
		s.ByPlayer[pn] = ps
	}
	return ps
}
