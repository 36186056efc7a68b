package extract

import (
	"github.com/akvileja/soclog-tools/internal/game"
	"github.com/akvileja/soclog-tools/internal/soclog"
)

func (x *Extractor) extractBuyDevCard(e *soclog.Entry) *Action {
	// f3:BuyDevCardRequest
	if !x.atClient {
		if !e.FromClient {
			return nil
		}
		e = x.next()
	}

	// all:PlayerElements(LOSE) paying for the card
	if _, ok := msgAs[soclog.PlayerElements](e); !ok || !e.IsToAll() {
		return nil
	}
	e = x.next()

	// p3:DevCardAction(DRAW) with the real card type; another player's
	// at-client log never sees it, so their card type stays unknown
	cardType := 0
	if !(x.atClient && x.st.playerNumber != x.atClientPN) {
		dca, ok := msgAs[soclog.DevCardAction](e)
		if !ok || e.FromClient || e.PN < 0 || dca.ActionType != game.DevCardDraw {
			return nil
		}
		cardType = dca.CardType

		e = x.next()
	}

	// !p3:DevCardAction(DRAW unknown) for the other players
	if !(x.atClient && x.st.playerNumber == x.atClientPN) {
		if e == nil || e.FromClient || e.ExcludedPN == nil || e.MessageType() != soclog.MsgDevCardAction {
			return nil
		}

		e = x.next()
	}

	// all:SimpleAction(DEVCARD_BOUGHT) with the remaining deck count
	sa, ok := msgAs[soclog.SimpleAction](e)
	if !ok || !e.IsToAll() || sa.ActionType != game.SimpleActDevCardBought {
		return nil
	}
	count := sa.Value1
	e = x.next()

	// all:GameState
	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}

	return x.finish(ActBuyDevCard, cardType, count, 0, nil, nil)
}

func (x *Extractor) extractPlayDevCard(e *soclog.Entry) *Action {
	// f3:PlayDevCardRequest
	if !x.atClient {
		if !(e.FromClient && e.PN == x.st.playerNumber) {
			return nil
		}
		e = x.next()
	}

	// all:DevCardAction(PLAY)
	dca, ok := msgAs[soclog.DevCardAction](e)
	if !ok || !e.IsToAll() || dca.ActionType != game.DevCardPlay {
		return nil
	}
	cardType := dca.CardType
	e = x.next()

	// all:PlayerElement(SET PLAYED_DEV_CARD_FLAG=1)
	pe, ok := msgAs[soclog.PlayerElement](e)
	if !ok || !e.IsToAll() || pe.ElementType != game.ElemPlayedDevCardFlag {
		return nil
	}

	// the rest of the sequence depends on the card
	var act *Action
	switch cardType {
	case game.DevCardRoads:
		act = x.finishPlayRoadBuilding()
	case game.DevCardDisc:
		act = x.finishPlayDiscovery()
	case game.DevCardMono:
		act = x.finishPlayMonopoly()
	case game.DevCardKnight:
		act = x.finishPlayKnight()
	default:
		return nil
	}

	// a card played before the roll is followed by all:RollDicePrompt
	if act != nil && x.st.gameState == game.StateRollOrCard {
		if pr := x.nextIfType(soclog.MsgRollDicePrompt); pr != nil {
			act.Entries = append(act.Entries, *pr)
			x.resetSeq()
		}
	}

	return act
}

// finishPlayRoadBuilding handles Road Building's tail: up to two free
// placements, either of which the player can cancel or skip by ending
// their turn.
func (x *Extractor) finishPlayRoadBuilding() *Action {
	// all:GameState; FREE_ROAD1, or FREE_ROAD2 with only one road left
	e := x.next()
	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}

	edge1 := Unplaced

	if x.st.gameState == game.StatePlacingFreeRoad1 {
		if !x.atClient {
			// f3:PutPiece, or f3:CancelBuildRequest / f3:EndTurn to bail out
			prev := x.snapshot()
			e = x.next()
			if e == nil || !e.FromClient || e.PN != x.st.playerNumber {
				return nil
			}
			switch e.MessageType() {
			case soclog.MsgPutPiece:
				// placement continues below

			case soclog.MsgEndTurn:
				// the turn-end sequence returns the card; leave it unconsumed
				x.backtrackTo(prev)
				return x.finish(ActPlayDevCard, game.DevCardRoads, Unplaced, Unplaced, nil, nil)

			case soclog.MsgCancelBuildRequest:
				// all:DevCardAction(ADD_OLD) returning the card
				e = x.next()
				dca, ok := msgAs[soclog.DevCardAction](e)
				if !ok || !e.IsToAll() || dca.ActionType != game.DevCardAddOld {
					return nil
				}

				// all:PlayerElement(SET PLAYED_DEV_CARD_FLAG=0)
				e = x.next()
				pe, ok := msgAs[soclog.PlayerElement](e)
				if !ok || !e.IsToAll() || pe.Action != game.ElemSet ||
					pe.ElementType != game.ElemPlayedDevCardFlag {
					return nil
				}

				// all:GameState
				e = x.next()
				if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
					return nil
				}

				return x.finish(ActPlayDevCard, game.DevCardRoads, Unplaced, Unplaced, nil, nil)

			default:
				return nil
			}
		}

		// all:PutPiece, or at-client all:DevCardAction(ADD_OLD) when the
		// client player canceled
		e = x.next()
		if e == nil || !e.IsToAll() {
			return nil
		}
		if pp, ok := msgAs[soclog.PutPiece](e); ok {
			edge1 = pp.Coord
			if pp.PieceType == int(game.PieceShip) {
				edge1 = -edge1
			}
		} else if dca, ok := msgAs[soclog.DevCardAction](e); x.atClient && ok && dca.ActionType == game.DevCardAddOld {
			// all:PlayerElement(SET PLAYED_DEV_CARD_FLAG=0)
			e = x.next()
			pe, ok := msgAs[soclog.PlayerElement](e)
			if !ok || !e.IsToAll() || pe.Action != game.ElemSet ||
				pe.ElementType != game.ElemPlayedDevCardFlag {
				return nil
			}

			// all:ClearOffer(-1) if ending the turn, else all:GameState
			prev := x.snapshot()
			e = x.next()
			if e == nil || !e.IsToAll() {
				return nil
			}
			if e.MessageType() == soclog.MsgClearOffer {
				x.backtrackTo(prev)
			} else if e.MessageType() != soclog.MsgGameState {
				return nil
			}

			return x.finish(ActPlayDevCard, game.DevCardRoads, Unplaced, Unplaced, nil, nil)
		}

		// optional all:GameElements(LONGEST_ROAD_PLAYER) after 1st placement
		e = x.next()
		if e == nil {
			return nil
		}
		if e.MessageType() == soclog.MsgGameElements {
			if !e.IsToAll() {
				return nil
			}
			e = x.next()
			if e == nil {
				return nil
			}
		}

		// optional all:GameElements(CURRENT_PLAYER) if Longest Route won the game
		if ge, ok := msgAs[soclog.GameElements](e); ok {
			if !e.IsToAll() || len(ge.ElementTypes) != 1 ||
				ge.ElementTypes[0] != game.GameElemCurrentPlayer {
				return nil
			}
			e = x.next()
			if e == nil {
				return nil
			}
		}

		// all:GameState
		if !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
			return nil
		}

		if x.st.gameState != game.StatePlacingFreeRoad2 {
			return x.finish(ActPlayDevCard, game.DevCardRoads, edge1, Unplaced, nil, nil)
		}
	}

	if x.st.gameState != game.StatePlacingFreeRoad2 {
		return nil
	}

	if !x.atClient {
		// f3:PutPiece for the 2nd placement, or f3:CancelBuildRequest /
		// f3:EndTurn to stop after one
		prev := x.snapshot()
		e = x.next()
		if e == nil || !e.FromClient || e.PN != x.st.playerNumber {
			return nil
		}
		switch e.MessageType() {
		case soclog.MsgPutPiece:
			// placement continues below

		case soclog.MsgEndTurn:
			x.backtrackTo(prev)
			return x.finish(ActPlayDevCard, game.DevCardRoads, edge1, Unplaced, nil, nil)

		case soclog.MsgCancelBuildRequest:
			e = x.next()

			// all:DevCardAction(ADD_OLD) only when canceling with one road left
			if dca, ok := msgAs[soclog.DevCardAction](e); ok && e.IsToAll() && dca.ActionType == game.DevCardAddOld {
				// all:PlayerElement(SET PLAYED_DEV_CARD_FLAG=0)
				e = x.next()
				pe, ok := msgAs[soclog.PlayerElement](e)
				if !ok || !e.IsToAll() || pe.Action != game.ElemSet ||
					pe.ElementType != game.ElemPlayedDevCardFlag {
					return nil
				}

				e = x.next()
			}

			// all:GameState
			if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
				return nil
			}

			return x.finish(ActPlayDevCard, game.DevCardRoads, edge1, Unplaced, nil, nil)

		default:
			return nil
		}
	}

	edge2 := Unplaced

	// all:PutPiece, or at-client one of ClearOffer(-1) / GameState /
	// DevCardAction(ADD_OLD) when the client player canceled
	prev := x.snapshot()
	e = x.next()
	if e == nil || !e.IsToAll() {
		return nil
	}
	if pp, ok := msgAs[soclog.PutPiece](e); ok {
		edge := pp.Coord
		if pp.PieceType == int(game.PieceShip) {
			edge = -edge
		}
		if edge1 == Unplaced {
			edge1 = edge
		} else {
			edge2 = edge
		}
	} else if x.atClient && e.MessageType() == soclog.MsgClearOffer {
		x.backtrackTo(prev)
		return x.finish(ActPlayDevCard, game.DevCardRoads, edge1, Unplaced, nil, nil)
	} else if x.atClient && e.MessageType() == soclog.MsgGameState {
		return x.finish(ActPlayDevCard, game.DevCardRoads, edge1, Unplaced, nil, nil)
	} else if dca, ok := msgAs[soclog.DevCardAction](e); x.atClient && ok && dca.ActionType == game.DevCardAddOld {
		// all:PlayerElement(SET PLAYED_DEV_CARD_FLAG=0)
		e = x.next()
		pe, ok := msgAs[soclog.PlayerElement](e)
		if !ok || !e.IsToAll() || pe.Action != game.ElemSet ||
			pe.ElementType != game.ElemPlayedDevCardFlag {
			return nil
		}

		// all:ClearOffer(-1) if ending the turn, else all:GameState
		prev = x.snapshot()
		e = x.next()
		if e == nil || !e.IsToAll() {
			return nil
		}
		if e.MessageType() == soclog.MsgClearOffer {
			x.backtrackTo(prev)
		} else if e.MessageType() != soclog.MsgGameState {
			return nil
		}

		return x.finish(ActPlayDevCard, game.DevCardRoads, Unplaced, Unplaced, nil, nil)
	} else {
		return nil
	}

	// optional all:GameElements(LONGEST_ROAD_PLAYER) after 2nd placement
	e = x.next()
	if e == nil {
		return nil
	}
	if e.MessageType() == soclog.MsgGameElements {
		if !e.IsToAll() {
			return nil
		}
		e = x.next()
		if e == nil {
			return nil
		}
	}

	// optional all:GameElements(CURRENT_PLAYER) if Longest Route won the game
	if ge, ok := msgAs[soclog.GameElements](e); ok {
		if !e.IsToAll() || len(ge.ElementTypes) != 1 ||
			ge.ElementTypes[0] != game.GameElemCurrentPlayer {
			return nil
		}
		e = x.next()
		if e == nil {
			return nil
		}
	}

	// all:GameState
	if !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}

	return x.finish(ActPlayDevCard, game.DevCardRoads, edge1, edge2, nil, nil)
}

func (x *Extractor) finishPlayDiscovery() *Action {
	// all:GameState(WAITING_FOR_DISCOVERY)
	e := x.next()
	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}
	if x.st.gameState != game.StateWaitingForDiscovery {
		return nil
	}

	// f3:PickResources
	if !x.atClient {
		e = x.next()
		if e == nil || !e.FromClient || e.PN != x.st.playerNumber ||
			e.MessageType() != soclog.MsgPickResources {
			return nil
		}
	}

	// all:PickResources with the two chosen resources
	e = x.next()
	pr, ok := msgAs[soclog.PickResources](e)
	if !ok || !e.IsToAll() {
		return nil
	}
	picked := pr.Resources

	// all:GameState
	e = x.next()
	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}

	return x.finish(ActPlayDevCard, game.DevCardDisc, 0, 0, &picked, nil)
}

func (x *Extractor) finishPlayMonopoly() *Action {
	// all:GameState(WAITING_FOR_MONOPOLY)
	e := x.next()
	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}
	if x.st.gameState != game.StateWaitingForMonopoly {
		return nil
	}

	// f3:PickResourceType
	if !x.atClient {
		e = x.next()
		if e == nil || !e.FromClient || e.PN != x.st.playerNumber ||
			e.MessageType() != soclog.MsgPickResourceType {
			return nil
		}
	}

	// per victim: all:PlayerElement(SET, news) + all:ResourceCount, until
	// the current player's all:PlayerElement(GAIN) with the total
	for {
		e = x.next()
		pe, ok := msgAs[soclog.PlayerElement](e)
		if !ok || !e.IsToAll() {
			return nil
		}
		if pe.IsNews && pe.Action == game.ElemSet {
			e = x.next()
			if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgResourceCount {
				return nil
			}
		} else if pe.Action == game.ElemGain {
			break
		} else {
			return nil
		}
	}

	// all:SimpleAction(RSRC_TYPE_MONOPOLIZED) with amount and type
	e = x.next()
	sa, ok := msgAs[soclog.SimpleAction](e)
	if !ok || !e.IsToAll() || sa.ActionType != game.SimpleActRsrcTypeMonopolized {
		return nil
	}
	var gained *game.ResourceSet
	if sa.Value1 != 0 {
		gained = &game.ResourceSet{}
		gained.Add(sa.Value2, sa.Value1)
	}

	// all:GameState
	e = x.next()
	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}

	return x.finish(ActPlayDevCard, game.DevCardMono, 0, 0, gained, nil)
}

func (x *Extractor) finishPlayKnight() *Action {
	// all:PlayerElement(GAIN NUMKNIGHTS=1)
	e := x.next()
	pe, ok := msgAs[soclog.PlayerElement](e)
	if !ok || !e.IsToAll() || pe.ElementType != game.ElemNumKnights {
		return nil
	}

	// optional all:GameElements(LARGEST_ARMY_PLAYER)
	e = x.next()
	if e == nil || !e.IsToAll() {
		return nil
	}
	if ge, ok := msgAs[soclog.GameElements](e); ok {
		if len(ge.ElementTypes) != 1 || ge.ElementTypes[0] != game.GameElemLargestArmyPlayer {
			return nil
		}
		e = x.next()
		if e == nil || !e.IsToAll() {
			return nil
		}
	}

	// all:GameState, usually PLACING_ROBBER
	if e.MessageType() != soclog.MsgGameState {
		return nil
	}

	return x.finish(ActPlayDevCard, game.DevCardKnight, 0, 0, nil, nil)
}
