package stats

import (
	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/game"
)

// Stats holds aggregated statistics over one or more extracted games
type Stats struct {
	// Action counts
	TotalActions   int
	UnknownActions int
	ByType         map[extract.ActionType]int

	// Turn and dice data
	Turns     int
	DiceRolls map[int]int // rolled total -> count

	// Trades
	BankTrades   int
	PlayerTrades int

	// Per-player breakdown
	ByPlayer map[int]*PlayerStats

	// Games folded into this accumulator, and how many of them
	// reached GAME_OVER
	GamesSeen     int
	FinishedGames int

	// Winner of the most recently accumulated game, -1 if none
	// finished. Only meaningful when GamesSeen == 1; across several
	// games use the per-player Wins counters instead.
	WinnerPN int
}

// PlayerStats holds stats for a single player number
type PlayerStats struct {
	PlayerNumber int
	Turns        int
	PiecesBuilt  map[game.PieceType]int
	PiecesMoved  int
	DevBought    int
	DevPlayed    int
	OffersMade   int
	TradesMade   int // player trades completed as the offering side
	TimesRobbed  int
	Discards     int
	Wins         int
}

// NewStats returns an empty accumulator
func NewStats() *Stats {
	return &Stats{
		ByType:    make(map[extract.ActionType]int),
		DiceRolls: make(map[int]int),
		ByPlayer:  make(map[int]*PlayerStats),
		WinnerPN:  -1,
	}
}

// UnknownRatio reports the fraction of actions that were not recognized.
func (s *Stats) UnknownRatio() float64 {
	if s.TotalActions == 0 {
		return 0
	}
	return float64(s.UnknownActions) / float64(s.TotalActions)
}
