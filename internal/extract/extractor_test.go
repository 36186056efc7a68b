package extract_test

import (
	"errors"
	"math"
	"testing"

	"github.com/akvileja/soclog-tools/internal/extract"
	"github.com/akvileja/soclog-tools/internal/game"
	"github.com/akvileja/soclog-tools/internal/genlog"
	"github.com/akvileja/soclog-tools/internal/soclog"
)

func all(msg soclog.Message) soclog.Entry { return soclog.NewEntry(msg) }

func to(pn int, msg soclog.Message) soclog.Entry { return soclog.NewEntryToPlayer(msg, pn) }

func from(pn int, msg soclog.Message) soclog.Entry { return soclog.NewEntryFromClient(msg, pn) }

func excl(msg soclog.Message, pns ...int) soclog.Entry {
	e := soclog.NewEntry(msg)
	e.ExcludedPN = pns
	return e
}

// gameLog builds a full-mode log with the standard opening already in
// place, followed by the given entries.
func gameLog(entries ...soclog.Entry) *soclog.EventLog {
	log := soclog.NewEventLog("extract-test", 2700)
	log.Add(
		all(soclog.Version{Number: 2700}),
		all(soclog.NewGame{Game: "extract-test"}),
		all(soclog.StartGame{GameState: game.StateStart1A}),
	)
	log.Add(entries...)
	return log
}

func extractAll(t *testing.T, log *soclog.EventLog) *extract.ActionLog {
	t.Helper()
	x, err := extract.New(log, false)
	if err != nil {
		t.Fatal(err)
	}
	return x.Extract()
}

func actionTypes(al *extract.ActionLog) []extract.ActionType {
	types := make([]extract.ActionType, len(al.Actions))
	for i, a := range al.Actions {
		types[i] = a.Type
	}
	return types
}

func wantTypes(t *testing.T, al *extract.ActionLog, want ...extract.ActionType) {
	t.Helper()
	got := actionTypes(al)
	if len(got) != len(want) {
		t.Fatalf("got %d actions %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("action %d is %v, want %v (all: %v)", i, got[i], want[i], got)
		}
	}
}

func TestNewRejectsBadLogs(t *testing.T) {
	empty := soclog.NewEventLog("empty", 2700)
	if _, err := extract.New(empty, false); !errors.Is(err, extract.ErrEmptyLog) {
		t.Errorf("empty log: err = %v, want ErrEmptyLog", err)
	}

	noVersion := soclog.NewEventLog("noversion", 2700)
	noVersion.Add(all(soclog.NewGame{Game: "noversion"}))
	if _, err := extract.New(noVersion, false); !errors.Is(err, extract.ErrExpectedVersion) {
		t.Errorf("missing Version: err = %v, want ErrExpectedVersion", err)
	}

	noNewGame := soclog.NewEventLog("nonewgame", 2700)
	noNewGame.Add(
		all(soclog.Version{Number: 2700}),
		all(soclog.StartGame{GameState: game.StateStart1A}),
	)
	if _, err := extract.New(noNewGame, false); !errors.Is(err, extract.ErrExpectedNewGame) {
		t.Errorf("missing NewGame: err = %v, want ErrExpectedNewGame", err)
	}

	noStart := soclog.NewEventLog("nostart", 2700)
	noStart.Add(
		all(soclog.Version{Number: 2700}),
		all(soclog.NewGame{Game: "nostart"}),
		all(soclog.Turn{PlayerNumber: 0, GameState: game.StateStart1A}),
	)
	if _, err := extract.New(noStart, false); !errors.Is(err, extract.ErrNoStartGame) {
		t.Errorf("missing StartGame: err = %v, want ErrNoStartGame", err)
	}

	badClient := gameLog()
	badClient.IsAtClient = true
	badClient.AtClientPN = -1
	if _, err := extract.New(badClient, false); !errors.Is(err, extract.ErrInvalidAtClientPN) {
		t.Errorf("at-client without pn: err = %v, want ErrInvalidAtClientPN", err)
	}
}

func TestKeepPreGameEmitsOpeningAction(t *testing.T) {
	log := soclog.NewEventLog("pregame", 2700)
	log.Add(
		all(soclog.Version{Number: 2700}),
		all(soclog.NewGame{Game: "pregame"}),
		all(soclog.GameTextMsg{Nickname: "alice", Text: "good luck"}),
		all(soclog.StartGame{GameState: game.StateStart1A}),
		all(soclog.Turn{PlayerNumber: 0, GameState: game.StateStart1A}),
	)

	x, err := extract.New(log, true)
	if err != nil {
		t.Fatal(err)
	}
	al := x.Extract()

	wantTypes(t, al, extract.ActLogStartToStartGame, extract.ActTurnBegins)
	opening := al.Actions[0]
	if opening.StartIndex != 0 || len(opening.Entries) != 4 {
		t.Errorf("opening action: start=%d entries=%d, want 0 and 4", opening.StartIndex, len(opening.Entries))
	}
	if al.Actions[1].StartIndex != 4 {
		t.Errorf("first turn starts at %d, want 4", al.Actions[1].StartIndex)
	}
}

func TestRollDiceWithResourceDetail(t *testing.T) {
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 3, GameState: game.StateRollOrCard}),
		all(soclog.RollDicePrompt{PlayerNumber: 3}),
		from(3, soclog.RollDice{}),
		all(soclog.DiceResult{Result: 8}),
		all(soclog.DiceResultResources{
			PlayerNumbers: []int{2},
			Totals:        []int{5},
			Gains:         []game.ResourceSet{game.NewResourceSet(0, 0, 0, 1)},
		}),
		all(soclog.PlayerElements{
			PlayerNumber: 2, Action: game.ElemGain,
			ElementTypes: []int{game.ElemWheat}, Amounts: []int{1},
		}),
		all(soclog.GameState{State: game.StatePlay1}),
		from(3, soclog.EndTurn{}),
		all(soclog.ClearOffer{PlayerNumber: -1}),
	)

	al := extractAll(t, log)
	wantTypes(t, al, extract.ActTurnBegins, extract.ActRollDice, extract.ActEndTurn)

	turn := al.Actions[0]
	if turn.Param1 != 3 || len(turn.Entries) != 2 {
		t.Errorf("turn begins: pn=%d entries=%d, want 3 and 2", turn.Param1, len(turn.Entries))
	}
	roll := al.Actions[1]
	if roll.Param1 != 8 {
		t.Errorf("roll total = %d, want 8", roll.Param1)
	}
	if len(roll.Entries) != 5 {
		t.Errorf("roll gathered %d entries, want 5", len(roll.Entries))
	}
	if roll.EndingGameState != game.StatePlay1 {
		t.Errorf("roll ending state = %d, want %d", roll.EndingGameState, game.StatePlay1)
	}
}

func TestBuildPieceFromBuildRequest(t *testing.T) {
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 3, GameState: game.StatePlay1}),
		from(3, soclog.BuildRequest{PieceType: int(game.PieceRoad)}),
		all(soclog.PlayerElements{
			PlayerNumber: 3, Action: game.ElemLose,
			ElementTypes: []int{game.ElemClay, game.ElemWood}, Amounts: []int{1, 1},
		}),
		all(soclog.GameState{State: game.StatePlacingRoad}),
		from(3, soclog.PutPiece{PlayerNumber: 3, PieceType: int(game.PieceRoad), Coord: 0x34}),
		all(soclog.PutPiece{PlayerNumber: 3, PieceType: int(game.PieceRoad), Coord: 0x34}),
		all(soclog.GameState{State: game.StatePlay1}),
	)

	al := extractAll(t, log)
	wantTypes(t, al, extract.ActTurnBegins, extract.ActBuildPiece)

	build := al.Actions[1]
	if build.Param1 != int(game.PieceRoad) || build.Param2 != 0x34 || build.Param3 != 3 {
		t.Errorf("build params = %d/%#x/%d, want road at 0x34 by 3",
			build.Param1, build.Param2, build.Param3)
	}
	if len(build.Entries) != 6 {
		t.Errorf("build claimed %d entries, want 6", len(build.Entries))
	}
	if build.EndingGameState != game.StatePlay1 {
		t.Errorf("build ending state = %d, want %d", build.EndingGameState, game.StatePlay1)
	}
}

func TestInitialPlacementEndsBeforeNextTurn(t *testing.T) {
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 0, GameState: game.StateStart1A}),
		from(0, soclog.PutPiece{PlayerNumber: 0, PieceType: int(game.PieceSettlement), Coord: 0x45}),
		all(soclog.PutPiece{PlayerNumber: 0, PieceType: int(game.PieceSettlement), Coord: 0x45}),
		all(soclog.GameState{State: game.StateStart1B}),
		from(0, soclog.PutPiece{PlayerNumber: 0, PieceType: int(game.PieceRoad), Coord: 0x46}),
		all(soclog.PutPiece{PlayerNumber: 0, PieceType: int(game.PieceRoad), Coord: 0x46}),
		all(soclog.Turn{PlayerNumber: 1, GameState: game.StateStart1A}),
	)

	al := extractAll(t, log)
	wantTypes(t, al,
		extract.ActTurnBegins, extract.ActBuildPiece, extract.ActBuildPiece, extract.ActTurnBegins)

	road := al.Actions[2]
	if road.Param1 != int(game.PieceRoad) || road.Param2 != 0x46 {
		t.Errorf("road params = %d/%#x, want road at 0x46", road.Param1, road.Param2)
	}
	// the road placement must not swallow the next player's Turn
	if road.StartIndex+len(road.Entries) != al.Actions[3].StartIndex {
		t.Errorf("road action overlaps the next turn: %d+%d vs %d",
			road.StartIndex, len(road.Entries), al.Actions[3].StartIndex)
	}
	if al.Actions[3].Param1 != 1 {
		t.Errorf("next turn belongs to pn %d, want 1", al.Actions[3].Param1)
	}
}

func TestUnclaimedEntriesBecomeUnknown(t *testing.T) {
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 3, GameState: game.StateRollOrCard}),
		all(soclog.RollDicePrompt{PlayerNumber: 3}),
		from(3, soclog.RollDice{}),
		all(soclog.DiceResult{Result: 6}),
		all(soclog.GameState{State: game.StatePlay1}),
		from(3, soclog.EndTurn{}),
		all(soclog.ClearOffer{PlayerNumber: -1}),
		all(soclog.SVPTextMessage{PlayerNumber: 1, SVP: 1, Desc: "settled a new island"}),
		all(soclog.ResourceCount{PlayerNumber: 1, Count: 4}),
		all(soclog.Turn{PlayerNumber: 0, GameState: game.StateRollOrCard}),
	)

	al := extractAll(t, log)
	wantTypes(t, al,
		extract.ActTurnBegins, extract.ActRollDice, extract.ActEndTurn,
		extract.ActUnknown, extract.ActTurnBegins)

	unk := al.Actions[3]
	if len(unk.Entries) != 2 {
		t.Errorf("unknown span has %d entries, want 2", len(unk.Entries))
	}
	if unk.StartIndex+len(unk.Entries) != al.Actions[4].StartIndex {
		t.Error("unknown span does not abut the following turn")
	}
}

func TestFailedRecognizerFallsBackToUnknown(t *testing.T) {
	// a client BankTrade not followed by the server's copy
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 3, GameState: game.StatePlay1}),
		from(3, soclog.BankTrade{
			PlayerNumber: 3,
			Give:         game.NewResourceSet(0, 0, 4),
			Get:          game.NewResourceSet(0, 1),
		}),
		all(soclog.GameState{State: game.StatePlay1}),
		all(soclog.Turn{PlayerNumber: 0, GameState: game.StateRollOrCard}),
	)

	al := extractAll(t, log)
	wantTypes(t, al, extract.ActTurnBegins, extract.ActUnknown, extract.ActTurnBegins)
	if n := len(al.Actions[1].Entries); n != 2 {
		t.Errorf("unknown span has %d entries, want 2", n)
	}
}

func playRoadBuildingOpening(pn int) []soclog.Entry {
	return []soclog.Entry{
		all(soclog.Turn{PlayerNumber: pn, GameState: game.StatePlay1}),
		from(pn, soclog.PlayDevCardRequest{DevCard: game.DevCardRoads}),
		all(soclog.DevCardAction{PlayerNumber: pn, ActionType: game.DevCardPlay, CardType: game.DevCardRoads}),
		all(soclog.PlayerElement{
			PlayerNumber: pn, Action: game.ElemSet,
			ElementType: game.ElemPlayedDevCardFlag, Amount: 1,
		}),
		all(soclog.GameState{State: game.StatePlacingFreeRoad1}),
	}
}

func TestRoadBuildingBothPlacements(t *testing.T) {
	entries := playRoadBuildingOpening(3)
	entries = append(entries,
		from(3, soclog.PutPiece{PlayerNumber: 3, PieceType: int(game.PieceRoad), Coord: 0xA1}),
		all(soclog.PutPiece{PlayerNumber: 3, PieceType: int(game.PieceRoad), Coord: 0xA1}),
		all(soclog.GameState{State: game.StatePlacingFreeRoad2}),
		from(3, soclog.PutPiece{PlayerNumber: 3, PieceType: int(game.PieceRoad), Coord: 0xA2}),
		all(soclog.PutPiece{PlayerNumber: 3, PieceType: int(game.PieceRoad), Coord: 0xA2}),
		all(soclog.GameState{State: game.StatePlay1}),
	)

	al := extractAll(t, gameLog(entries...))
	wantTypes(t, al, extract.ActTurnBegins, extract.ActPlayDevCard)

	play := al.Actions[1]
	if play.Param1 != game.DevCardRoads || play.Param2 != 0xA1 || play.Param3 != 0xA2 {
		t.Errorf("road building params = %d/%#x/%#x, want both edges placed",
			play.Param1, play.Param2, play.Param3)
	}
}

func TestRoadBuildingCanceledBeforeFirstRoad(t *testing.T) {
	if extract.Unplaced != math.MaxInt32 {
		t.Fatalf("Unplaced = %d, want MaxInt32", extract.Unplaced)
	}

	entries := playRoadBuildingOpening(3)
	entries = append(entries,
		from(3, soclog.CancelBuildRequest{PieceType: int(game.PieceRoad)}),
		all(soclog.DevCardAction{PlayerNumber: 3, ActionType: game.DevCardAddOld, CardType: game.DevCardRoads}),
		all(soclog.PlayerElement{
			PlayerNumber: 3, Action: game.ElemSet,
			ElementType: game.ElemPlayedDevCardFlag, Amount: 0,
		}),
		all(soclog.GameState{State: game.StatePlay1}),
	)

	al := extractAll(t, gameLog(entries...))
	wantTypes(t, al, extract.ActTurnBegins, extract.ActPlayDevCard)

	play := al.Actions[1]
	if play.Param1 != game.DevCardRoads {
		t.Errorf("card type = %d, want road building", play.Param1)
	}
	if play.Param2 != extract.Unplaced || play.Param3 != extract.Unplaced {
		t.Errorf("edges = %#x/%#x, want both Unplaced", play.Param2, play.Param3)
	}
}

func TestRoadBuildingEndTurnAfterOneRoad(t *testing.T) {
	entries := playRoadBuildingOpening(3)
	entries = append(entries,
		from(3, soclog.PutPiece{PlayerNumber: 3, PieceType: int(game.PieceRoad), Coord: 0xB1}),
		all(soclog.PutPiece{PlayerNumber: 3, PieceType: int(game.PieceRoad), Coord: 0xB1}),
		all(soclog.GameState{State: game.StatePlacingFreeRoad2}),
		from(3, soclog.EndTurn{}),
		all(soclog.DevCardAction{PlayerNumber: 3, ActionType: game.DevCardAddOld, CardType: game.DevCardRoads}),
		all(soclog.PlayerElement{
			PlayerNumber: 3, Action: game.ElemSet,
			ElementType: game.ElemPlayedDevCardFlag, Amount: 0,
		}),
		all(soclog.ClearOffer{PlayerNumber: -1}),
	)

	al := extractAll(t, gameLog(entries...))
	wantTypes(t, al, extract.ActTurnBegins, extract.ActPlayDevCard, extract.ActEndTurn)

	play := al.Actions[1]
	if play.Param2 != 0xB1 || play.Param3 != extract.Unplaced {
		t.Errorf("edges = %#x/%#x, want one placed and one Unplaced", play.Param2, play.Param3)
	}
}

func TestBuyDevCard(t *testing.T) {
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 2, GameState: game.StatePlay1}),
		from(2, soclog.BuyDevCardRequest{}),
		all(soclog.PlayerElements{
			PlayerNumber: 2, Action: game.ElemLose,
			ElementTypes: []int{game.ElemOre, game.ElemSheep, game.ElemWheat},
			Amounts:      []int{1, 1, 1},
		}),
		to(2, soclog.DevCardAction{PlayerNumber: 2, ActionType: game.DevCardDraw, CardType: game.DevCardKnight}),
		excl(soclog.DevCardAction{PlayerNumber: 2, ActionType: game.DevCardDraw, CardType: game.DevCardUnknown}, 2),
		all(soclog.SimpleAction{PlayerNumber: 2, ActionType: game.SimpleActDevCardBought, Value1: 20}),
		all(soclog.GameState{State: game.StatePlay1}),
	)

	al := extractAll(t, log)
	wantTypes(t, al, extract.ActTurnBegins, extract.ActBuyDevCard)

	buy := al.Actions[1]
	if buy.Param1 != game.DevCardKnight {
		t.Errorf("bought card type = %d, want knight", buy.Param1)
	}
	if buy.Param2 != 20 {
		t.Errorf("cards left = %d, want 20", buy.Param2)
	}
}

func TestSevenRollDiscardAndRobbery(t *testing.T) {
	discarded := game.NewResourceSet(2, 0, 0, 2)
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 3, GameState: game.StateRollOrCard}),
		all(soclog.RollDicePrompt{PlayerNumber: 3}),
		from(3, soclog.RollDice{}),
		all(soclog.DiceResult{Result: 7}),
		all(soclog.GameState{State: game.StateWaitingForDiscards}),
		from(2, soclog.Discard{PlayerNumber: 2, Resources: discarded}),
		to(2, soclog.Discard{PlayerNumber: 2, Resources: discarded}),
		excl(soclog.Discard{PlayerNumber: 2, Resources: game.NewResourceSet(0, 0, 0, 0, 0, 4)}, 2),
		all(soclog.GameState{State: game.StateWaitingForRobberOrPirate}),
		from(3, soclog.ChoosePlayer{Choice: game.ChoiceMoveRobber}),
		all(soclog.GameState{State: game.StatePlacingRobber}),
		from(3, soclog.MoveRobber{PlayerNumber: 3, Coord: 0x77}),
		all(soclog.MoveRobber{PlayerNumber: 3, Coord: 0x77}),
		to(3, soclog.RobberyResult{PerpPN: 3, VictimPN: 2, ResType: game.ResourceWheat, Amount: 1}),
		to(2, soclog.RobberyResult{PerpPN: 3, VictimPN: 2, ResType: game.ResourceWheat, Amount: 1}),
		excl(soclog.RobberyResult{PerpPN: 3, VictimPN: 2, ResType: game.ResourceUnknown, Amount: 1}, 3, 2),
		all(soclog.GameState{State: game.StatePlay1}),
	)

	al := extractAll(t, log)
	wantTypes(t, al,
		extract.ActTurnBegins, extract.ActRollDice, extract.ActDiscard,
		extract.ActChooseMoveRobberOrPirate, extract.ActMoveRobberOrPirate, extract.ActRobPlayer)

	if al.Actions[1].Param1 != 7 {
		t.Errorf("roll total = %d, want 7", al.Actions[1].Param1)
	}
	discard := al.Actions[2]
	if discard.Param1 != 2 || discard.RS1 == nil || discard.RS1.Total() != 4 {
		t.Errorf("discard: pn=%d rs=%v", discard.Param1, discard.RS1)
	}
	if al.Actions[3].Param1 != 1 {
		t.Errorf("chose %d, want the robber", al.Actions[3].Param1)
	}
	move := al.Actions[4]
	if move.Param1 != 1 || move.Param2 != 0x77 {
		t.Errorf("moved %d to %#x, want robber to 0x77", move.Param1, move.Param2)
	}
	rob := al.Actions[5]
	if rob.Param1 != 2 {
		t.Errorf("robbed pn %d, want 2", rob.Param1)
	}
	if rob.RS1 == nil || rob.RS1.Amount(game.ResourceWheat) != 1 {
		t.Errorf("stolen resources = %v, want one wheat", rob.RS1)
	}
}

func TestPlayMonopoly(t *testing.T) {
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 3, GameState: game.StatePlay1}),
		from(3, soclog.PlayDevCardRequest{DevCard: game.DevCardMono}),
		all(soclog.DevCardAction{PlayerNumber: 3, ActionType: game.DevCardPlay, CardType: game.DevCardMono}),
		all(soclog.PlayerElement{
			PlayerNumber: 3, Action: game.ElemSet,
			ElementType: game.ElemPlayedDevCardFlag, Amount: 1,
		}),
		all(soclog.GameState{State: game.StateWaitingForMonopoly}),
		from(3, soclog.PickResourceType{ResourceType: game.ResourceSheep}),
		all(soclog.PlayerElement{
			PlayerNumber: 1, Action: game.ElemSet,
			ElementType: game.ElemSheep, Amount: 0, IsNews: true,
		}),
		all(soclog.ResourceCount{PlayerNumber: 1, Count: 3}),
		all(soclog.PlayerElement{
			PlayerNumber: 3, Action: game.ElemGain,
			ElementType: game.ElemSheep, Amount: 2,
		}),
		all(soclog.SimpleAction{
			PlayerNumber: 3, ActionType: game.SimpleActRsrcTypeMonopolized,
			Value1: 2, Value2: game.ResourceSheep,
		}),
		all(soclog.GameState{State: game.StatePlay1}),
	)

	al := extractAll(t, log)
	wantTypes(t, al, extract.ActTurnBegins, extract.ActPlayDevCard)

	play := al.Actions[1]
	if play.Param1 != game.DevCardMono {
		t.Errorf("card type = %d, want monopoly", play.Param1)
	}
	if play.RS1 == nil || play.RS1.Amount(game.ResourceSheep) != 2 {
		t.Errorf("monopolized = %v, want two sheep", play.RS1)
	}
}

func TestPlayKnight(t *testing.T) {
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 3, GameState: game.StatePlay1}),
		from(3, soclog.PlayDevCardRequest{DevCard: game.DevCardKnight}),
		all(soclog.DevCardAction{PlayerNumber: 3, ActionType: game.DevCardPlay, CardType: game.DevCardKnight}),
		all(soclog.PlayerElement{
			PlayerNumber: 3, Action: game.ElemSet,
			ElementType: game.ElemPlayedDevCardFlag, Amount: 1,
		}),
		all(soclog.PlayerElement{
			PlayerNumber: 3, Action: game.ElemGain,
			ElementType: game.ElemNumKnights, Amount: 1,
		}),
		all(soclog.GameElements{ElementTypes: []int{game.GameElemLargestArmyPlayer}, Values: []int{3}}),
		all(soclog.GameState{State: game.StatePlacingRobber}),
	)

	al := extractAll(t, log)
	wantTypes(t, al, extract.ActTurnBegins, extract.ActPlayDevCard)

	play := al.Actions[1]
	if play.Param1 != game.DevCardKnight {
		t.Errorf("card type = %d, want knight", play.Param1)
	}
	if play.EndingGameState != game.StatePlacingRobber {
		t.Errorf("ending state = %d, want placing robber", play.EndingGameState)
	}
}

func TestPlayDiscovery(t *testing.T) {
	picked := game.NewResourceSet(0, 0, 0, 2)
	log := gameLog(
		all(soclog.Turn{PlayerNumber: 3, GameState: game.StatePlay1}),
		from(3, soclog.PlayDevCardRequest{DevCard: game.DevCardDisc}),
		all(soclog.DevCardAction{PlayerNumber: 3, ActionType: game.DevCardPlay, CardType: game.DevCardDisc}),
		all(soclog.PlayerElement{
			PlayerNumber: 3, Action: game.ElemSet,
			ElementType: game.ElemPlayedDevCardFlag, Amount: 1,
		}),
		all(soclog.GameState{State: game.StateWaitingForDiscovery}),
		from(3, soclog.PickResources{PlayerNumber: 3, Resources: picked}),
		all(soclog.PickResources{PlayerNumber: 3, Resources: picked}),
		all(soclog.GameState{State: game.StatePlay1}),
	)

	al := extractAll(t, log)
	wantTypes(t, al, extract.ActTurnBegins, extract.ActPlayDevCard)

	play := al.Actions[1]
	if play.Param1 != game.DevCardDisc {
		t.Errorf("card type = %d, want discovery", play.Param1)
	}
	if play.RS1 == nil || play.RS1.Amount(game.ResourceWheat) != 2 {
		t.Errorf("picked = %v, want two wheat", play.RS1)
	}
}

func TestActionsPartitionTheLog(t *testing.T) {
	log := genlog.Generate(genlog.Options{GameName: "partition", Players: 4, Turns: 8, Seed: 11})

	x, err := extract.New(log, true)
	if err != nil {
		t.Fatal(err)
	}
	al := x.Extract()

	offset := 0
	for i, a := range al.Actions {
		if a.StartIndex != offset {
			t.Fatalf("action %d (%v) starts at %d, want %d", i, a.Type, a.StartIndex, offset)
		}
		if len(a.Entries) == 0 {
			t.Fatalf("action %d (%v) claims no entries", i, a.Type)
		}
		offset += len(a.Entries)
	}
	if offset != len(log.Entries) {
		t.Fatalf("actions cover %d of %d entries", offset, len(log.Entries))
	}
}

func TestExtractResumesAfterAppend(t *testing.T) {
	full := genlog.Generate(genlog.Options{GameName: "resume", Players: 3, Turns: 6, Seed: 7})
	oneShot := extractAll(t, full)

	// rerunning with no new entries adds nothing
	x, err := extract.New(full, false)
	if err != nil {
		t.Fatal(err)
	}
	al := x.Extract()
	n := len(al.Actions)
	if got := x.Extract(); len(got.Actions) != n {
		t.Fatalf("second Extract grew the log: %d -> %d actions", n, len(got.Actions))
	}

	// split the entry list on a turn boundary and feed it in two batches
	boundary := -1
	for i := 1; i < len(oneShot.Actions); i++ {
		if oneShot.Actions[i].Type == extract.ActTurnBegins &&
			oneShot.Actions[i-1].Type == extract.ActEndTurn {
			boundary = oneShot.Actions[i].StartIndex
			break
		}
	}
	if boundary < 0 {
		t.Fatal("no end-turn/turn boundary in the generated game")
	}

	partial := soclog.NewEventLog(full.GameName, full.Version)
	partial.Add(full.Entries[:boundary]...)
	x2, err := extract.New(partial, false)
	if err != nil {
		t.Fatal(err)
	}
	x2.Extract()

	partial.Add(full.Entries[boundary:]...)
	resumed := x2.Extract()

	got, want := actionTypes(resumed), actionTypes(oneShot)
	if len(got) != len(want) {
		t.Fatalf("resumed extraction found %d actions, one-shot found %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("action %d: resumed %v, one-shot %v", i, got[i], want[i])
		}
	}
}

func TestAtClientViewMatchesFullLog(t *testing.T) {
	full := genlog.Generate(genlog.Options{GameName: "modes", Players: 4, Turns: 10, Seed: 3})
	fullActions := extractAll(t, full)

	filtered := full.FilterForClient(0)
	x, err := extract.New(filtered, false)
	if err != nil {
		t.Fatal(err)
	}
	clientActions := x.Extract()

	if !clientActions.IsAtClient || clientActions.AtClientPN != 0 {
		t.Fatalf("client log marked atClient=%v pn=%d", clientActions.IsAtClient, clientActions.AtClientPN)
	}

	got, want := actionTypes(clientActions), actionTypes(fullActions)
	if len(got) != len(want) {
		t.Fatalf("client view found %d actions, full log %d:\n%v\n%v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("action %d: client %v, full %v", i, got[i], want[i])
		}
		switch want[i] {
		case extract.ActTurnBegins, extract.ActRollDice:
			if clientActions.Actions[i].Param1 != fullActions.Actions[i].Param1 {
				t.Fatalf("action %d (%v): client param %d, full param %d", i, want[i],
					clientActions.Actions[i].Param1, fullActions.Actions[i].Param1)
			}
		}
	}
}
