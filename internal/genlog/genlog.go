// Package genlog produces synthetic event logs for testing and demos.
// A generated log is a complete short game whose every entry sequence is
// one the extractor recognizes, so extraction yields no UNKNOWN spans.
package genlog

import (
	"math/rand"

	"github.com/akvileja/soclog-tools/internal/game"
	"github.com/akvileja/soclog-tools/internal/soclog"
)

type Options struct {
	GameName string
	// Players is the number of seated players, 2 to 4.
	Players int
	// Turns is the number of rolled turns before the winning turn.
	Turns int
	// Seed selects the game; the same seed always yields the same log.
	Seed int64
}

func (o *Options) fillDefaults() {
	if o.GameName == "" {
		o.GameName = "synthetic"
	}
	if o.Players < 2 || o.Players > 4 {
		o.Players = 4
	}
	if o.Turns <= 0 {
		o.Turns = 12
	}
}

type builder struct {
	log     *soclog.EventLog
	rng     *rand.Rand
	players int
}

func (b *builder) all(msg soclog.Message) {
	b.log.Entries = append(b.log.Entries, soclog.NewEntry(msg))
}

func (b *builder) to(pn int, msg soclog.Message) {
	b.log.Entries = append(b.log.Entries, soclog.NewEntryToPlayer(msg, pn))
}

func (b *builder) from(pn int, msg soclog.Message) {
	b.log.Entries = append(b.log.Entries, soclog.NewEntryFromClient(msg, pn))
}

func (b *builder) excl(pn int, msg soclog.Message) {
	e := soclog.NewEntry(msg)
	e.ExcludedPN = []int{pn}
	b.log.Entries = append(b.log.Entries, e)
}

// Generate builds a full-mode log of one complete game: initial
// placement, opts.Turns ordinary turns, then a winning settlement and
// the game-over wrapup.
func Generate(opts Options) *soclog.EventLog {
	opts.fillDefaults()

	b := &builder{
		log: &soclog.EventLog{
			GameName:   opts.GameName,
			Version:    2700,
			AtClientPN: -1,
		},
		rng:     rand.New(rand.NewSource(opts.Seed)),
		players: opts.Players,
	}

	b.all(soclog.Version{Number: 2700})
	b.all(soclog.NewGame{Game: opts.GameName})
	b.all(soclog.StartGame{GameState: game.StateStart1A})

	b.initialPlacement()

	pn := 0
	for i := 0; i < opts.Turns; i++ {
		b.turn(pn)
		pn = (pn + 1) % b.players
	}
	b.winningTurn(pn)

	return b.log
}

// hexCoord picks a plausible board coordinate.
func (b *builder) hexCoord() int {
	return 0x23 + b.rng.Intn(0x88)
}

// resource picks a known resource type.
func (b *builder) resource() int {
	return game.ElemClay + b.rng.Intn(5)
}

func oneOf(resType int) game.ResourceSet {
	rs := game.ResourceSet{}
	rs.Add(resType, 1)
	return rs
}

// initialPlacement runs two placement rounds: settlements and roads in
// seat order, then in reverse order.
func (b *builder) initialPlacement() {
	place := func(pn, stateA, stateB int) {
		b.all(soclog.Turn{PlayerNumber: pn, GameState: stateA})
		b.from(pn, soclog.PutPiece{PlayerNumber: pn, PieceType: int(game.PieceSettlement), Coord: b.hexCoord()})
		b.all(soclog.PutPiece{PlayerNumber: pn, PieceType: int(game.PieceSettlement), Coord: b.hexCoord()})
		b.all(soclog.GameState{State: stateB})
		b.from(pn, soclog.PutPiece{PlayerNumber: pn, PieceType: int(game.PieceRoad), Coord: b.hexCoord()})
		b.all(soclog.PutPiece{PlayerNumber: pn, PieceType: int(game.PieceRoad), Coord: b.hexCoord()})
	}

	for pn := 0; pn < b.players; pn++ {
		place(pn, game.StateStart1A, game.StateStart1B)
	}
	for pn := b.players - 1; pn >= 0; pn-- {
		place(pn, game.StateStart2A, game.StateStart2B)
	}
}

// roll emits the turn opener and a non-seven dice roll with one player's
// gains.
func (b *builder) roll(pn int) {
	b.all(soclog.Turn{PlayerNumber: pn, GameState: game.StateRollOrCard})
	b.all(soclog.RollDicePrompt{PlayerNumber: pn})

	total := 3 + b.rng.Intn(9)
	if total == 7 {
		total = 8
	}
	b.from(pn, soclog.RollDice{})
	b.all(soclog.DiceResult{Result: total})
	gainer := b.rng.Intn(b.players)
	b.all(soclog.PlayerElements{
		PlayerNumber: gainer,
		Action:       game.ElemGain,
		ElementTypes: []int{b.resource()},
		Amounts:      []int{1},
	})
	b.all(soclog.GameState{State: game.StatePlay1})
}

func (b *builder) turn(pn int) {
	b.roll(pn)

	switch b.rng.Intn(4) {
	case 0:
		b.buildRoad(pn)
	case 1:
		b.bankTrade(pn)
	case 2:
		b.buyDevCard(pn)
	case 3:
		b.rejectedOffer(pn)
	}

	b.from(pn, soclog.EndTurn{})
	b.all(soclog.ClearOffer{PlayerNumber: -1})
}

func (b *builder) buildRoad(pn int) {
	b.from(pn, soclog.BuildRequest{PieceType: int(game.PieceRoad)})
	b.all(soclog.PlayerElements{
		PlayerNumber: pn,
		Action:       game.ElemLose,
		ElementTypes: []int{game.ElemClay, game.ElemWood},
		Amounts:      []int{1, 1},
	})
	b.all(soclog.GameState{State: game.StatePlacingRoad})
	coord := b.hexCoord()
	b.from(pn, soclog.PutPiece{PlayerNumber: pn, PieceType: int(game.PieceRoad), Coord: coord})
	b.all(soclog.PutPiece{PlayerNumber: pn, PieceType: int(game.PieceRoad), Coord: coord})
	b.all(soclog.GameState{State: game.StatePlay1})
}

func (b *builder) bankTrade(pn int) {
	give := game.ResourceSet{}
	give.Add(b.resource(), 4)
	get := oneOf(b.resource())
	b.from(pn, soclog.BankTrade{PlayerNumber: pn, Give: give, Get: get})
	b.all(soclog.BankTrade{PlayerNumber: pn, Give: give, Get: get})
}

func (b *builder) buyDevCard(pn int) {
	b.from(pn, soclog.BuyDevCardRequest{})
	b.all(soclog.PlayerElements{
		PlayerNumber: pn,
		Action:       game.ElemLose,
		ElementTypes: []int{game.ElemOre, game.ElemSheep, game.ElemWheat},
		Amounts:      []int{1, 1, 1},
	})
	card := game.DevCardKnight
	b.to(pn, soclog.DevCardAction{PlayerNumber: pn, ActionType: game.DevCardDraw, CardType: card})
	b.excl(pn, soclog.DevCardAction{PlayerNumber: pn, ActionType: game.DevCardDraw, CardType: game.DevCardUnknown})
	b.all(soclog.SimpleAction{PlayerNumber: pn, ActionType: game.SimpleActDevCardBought, Value1: 10 + b.rng.Intn(15)})
	b.all(soclog.GameState{State: game.StatePlay1})
}

func (b *builder) rejectedOffer(pn int) {
	other := (pn + 1 + b.rng.Intn(b.players-1)) % b.players
	to := make([]bool, b.players)
	to[other] = true
	give := oneOf(b.resource())
	get := oneOf(b.resource())
	offer := soclog.MakeOffer{FromPlayer: pn, To: to, Give: give, Get: get}
	b.from(pn, offer)
	b.all(offer)
	b.all(soclog.ClearTradeMsg{PlayerNumber: -1})

	b.from(other, soclog.RejectOffer{PlayerNumber: other})
	b.all(soclog.RejectOffer{PlayerNumber: other})
}

// winningTurn builds the settlement that ends the game and appends the
// final-score wrapup.
func (b *builder) winningTurn(pn int) {
	b.roll(pn)

	b.from(pn, soclog.BuildRequest{PieceType: int(game.PieceSettlement)})
	b.all(soclog.PlayerElements{
		PlayerNumber: pn,
		Action:       game.ElemLose,
		ElementTypes: []int{game.ElemClay, game.ElemSheep, game.ElemWheat, game.ElemWood},
		Amounts:      []int{1, 1, 1, 1},
	})
	b.all(soclog.GameState{State: game.StatePlacingSettlement})
	coord := b.hexCoord()
	b.from(pn, soclog.PutPiece{PlayerNumber: pn, PieceType: int(game.PieceSettlement), Coord: coord})
	b.all(soclog.PutPiece{PlayerNumber: pn, PieceType: int(game.PieceSettlement), Coord: coord})
	b.all(soclog.GameElements{ElementTypes: []int{game.GameElemCurrentPlayer}, Values: []int{pn}})
	b.all(soclog.GameState{State: game.StateOver})

	scores := make([]int, b.players)
	robots := make([]bool, b.players)
	for i := range scores {
		scores[i] = 4 + b.rng.Intn(5)
		robots[i] = i != pn
	}
	scores[pn] = 10
	b.all(soclog.GameStats{Scores: scores, Robots: robots})
	for i := 0; i < b.players; i++ {
		b.to(i, soclog.PlayerStats{StatsType: 1, Values: []int{1, 1, 1, 1, 1}})
	}
}
