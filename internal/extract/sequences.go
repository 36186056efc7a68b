package extract

import (
	"github.com/akvileja/soclog-tools/internal/game"
	"github.com/akvileja/soclog-tools/internal/soclog"
)

// Per-action recognizers. Each is called with the first entry of a
// candidate sequence already consumed into the accumulator, walks the
// rest of the grammar with next()/peekNext(), and either returns the
// finished Action or nil when the sequence doesn't match. On nil the
// main loop falls back to UNKNOWN gathering; the cursor is left wherever
// the recognizer stopped.

func (x *Extractor) extractTurnBegins(e *soclog.Entry) *Action {
	// all:Turn, which next() already used to update player and state
	if !e.IsToAll() {
		return nil
	}

	// optional all:RollDicePrompt unless Special Building or game over
	if x.st.gameState != game.StateSpecialBuilding && x.st.gameState != game.StateOver {
		x.nextIfType(soclog.MsgRollDicePrompt)
	}

	return x.finish(ActTurnBegins, x.st.playerNumber, 0, 0, nil, nil)
}

func (x *Extractor) extractRollDice(e *soclog.Entry) *Action {
	// f3:RollDice
	if !x.atClient {
		if !(e.FromClient && e.PN == x.st.playerNumber) {
			return nil
		}
		e = x.next()
	}

	// all:DiceResult
	dr, ok := msgAs[soclog.DiceResult](e)
	if !ok || !e.IsToAll() {
		return nil
	}
	diceTotal := dr.Result

	// resource distribution messages vary; scan to the GameState
	for {
		e = x.next()
		if e == nil {
			return nil
		}
		if e.MessageType() == soclog.MsgGameState {
			break
		}
	}
	if !e.IsToAll() {
		return nil
	}

	// occasionally more messages follow; gather until the next
	// sequence-starting message
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

	return x.finish(ActRollDice, diceTotal, 0, 0, nil, nil)
}

// extractFromRevealFogHex decides, in at-client mode, whether a fog-hex
// reveal starts a build or a ship move, and hands off accordingly.
func (x *Extractor) extractFromRevealFogHex(e *soclog.Entry) *Action {
	if !e.IsToAll() {
		return nil
	}

	eNext := x.peekNext()
	if eNext == nil || !eNext.IsToAll() {
		return nil
	}
	switch {
	case eNext.MessageType() == soclog.MsgPutPiece,
		eNext.MessageType() == soclog.MsgRevealFogHex && x.st.gameState < game.StateRollOrCard:
		return x.extractBuildPiece(e, false)
	case eNext.MessageType() == soclog.MsgMovePiece:
		return x.extractMovePiece(e)
	default:
		return nil
	}
}

// extractFromPlayerElements decides, in at-client mode, which action a
// leading PlayerElement(s) belongs to: a buy (piece or dev card), a
// Special Building ask, or an end of turn.
func (x *Extractor) extractFromPlayerElements(e *soclog.Entry) *Action {
	if pes, ok := msgAs[soclog.PlayerElements](e); ok {
		if len(pes.ElementTypes) == 0 {
			return nil
		}
		et0 := pes.ElementTypes[0]
		if pes.Action == game.ElemLose &&
			et0 >= game.ElemClay && et0 <= game.ElemWood &&
			(x.st.gameState == game.StatePlay1 || x.st.gameState == game.StateSpecialBuilding) {
			// losing known resources is a purchase; a dev card draw next
			// means buy dev card, otherwise build
			eNext := x.peekNext()
			if eNext == nil {
				return nil
			}
			if dca, ok := msgAs[soclog.DevCardAction](eNext); ok && dca.ActionType == game.DevCardDraw {
				return x.extractBuyDevCard(e)
			}
			return x.extractBuildPiece(e, false)
		}
	} else if pe, ok := msgAs[soclog.PlayerElement](e); ok {
		if pe.ElementType == game.ElemAskSpecialBuild {
			if pe.Amount != 0 {
				if pe.PlayerNumber != x.st.playerNumber {
					return x.extractAskSpecialBuilding(e)
				}
			} else if pe.PlayerNumber == x.st.playerNumber {
				return x.extractEndTurn(e)
			}
		}
	}

	return nil
}

func (x *Extractor) extractBuildPiece(e *soclog.Entry, startsWithBuildReq bool) *Action {
	// f3:PutPiece or f3:BuildRequest
	if !x.atClient {
		if !(e.FromClient && e.PN == x.st.playerNumber) {
			return nil
		}
		e = x.next()
	}

	isInitPlacement := x.st.gameState < game.StateRollOrCard

	// all:PlayerElements(LOSE) pays for the piece, except in init placement
	if !isInitPlacement {
		pes, ok := msgAs[soclog.PlayerElements](e)
		if !ok || !e.IsToAll() || pes.Action != game.ElemLose {
			return nil
		}
		e = x.next()
	}

	if startsWithBuildReq {
		// all:GameState placing the piece
		if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
			return nil
		}
		switch x.st.gameState {
		case game.StatePlacingRoad, game.StatePlacingSettlement, game.StatePlacingCity, game.StatePlacingShip:
			// placement states OK
		default:
			return nil
		}
		e = x.next()

		// f3:PutPiece
		if !x.atClient {
			if e == nil || !e.FromClient || e.PN != x.st.playerNumber ||
				e.MessageType() != soclog.MsgPutPiece {
				return nil
			}
			e = x.next()
		}
	}

	// Optional extras here depending on game options/scenario
	// (SVPTextMessage, PlayerElement, fog hex reveals). An initial
	// settlement can reveal more than one fog hex.
	hasFogGold, hasFogNonGold := false, false
	var fogGains *game.ResourceSet
	for {
		if e == nil {
			return nil
		}
		if rf, ok := msgAs[soclog.RevealFogHex](e); ok {
			if rf.HexType == game.HexGold {
				hasFogGold = true
			} else {
				hasFogNonGold = true
				if rf.HexType >= game.HexClay && rf.HexType <= game.HexWood {
					if fogGains == nil {
						fogGains = &game.ResourceSet{}
					}
					fogGains.Add(rf.HexType, 1)
				}
			}
		} else if e.MessageType() == soclog.MsgPutPiece {
			break
		}
		e = x.next()
	}

	// all:PutPiece
	pp, ok := msgAs[soclog.PutPiece](e)
	if !ok || !e.IsToAll() {
		return nil
	}
	pType, buildCoord, playerNumber := pp.PieceType, pp.Coord, pp.PlayerNumber

	eState := x.snapshot()

	// optional all:GameElements(LONGEST_ROAD_PLAYER); CURRENT_PLAYER here
	// is the start of a game-over pair, handled further down
	e = x.next()
	if e == nil {
		return nil
	}
	if ge, ok := msgAs[soclog.GameElements](e); ok && e.IsToAll() {
		if len(ge.ElementTypes) != 1 {
			return nil
		}
		switch ge.ElementTypes[0] {
		case game.GameElemLongestRoadPlayer:
			eState = x.snapshot()
			e = x.next()
		case game.GameElemCurrentPlayer:
			x.backtrackTo(eState)
			// e still references the GameElements entry; the checks below
			// route it into nextIfGameStateOrOver
		default:
			return nil
		}
	}

	if hasFogNonGold {
		// all:PlayerElement(GAIN, news) per revealed hex
		for {
			pe, ok := msgAs[soclog.PlayerElement](e)
			if !ok || !e.IsToAll() || !pe.IsNews || pe.Action != game.ElemGain {
				return nil
			}
			eState = x.snapshot()
			e = x.next()
			if e == nil {
				return nil
			}
			if _, more := msgAs[soclog.PlayerElement](e); !(more && pType == int(game.PieceSettlement)) {
				break
			}
		}
	}

	// all:GameState, or all:Turn starting the next init-placement
	// sequence, or the game-over pair if this placement won
	if !e.IsToAll() {
		return nil
	}
	if isInitPlacement && e.MessageType() == soclog.MsgTurn {
		x.backtrackTo(eState)
		return x.finish(ActBuildPiece, pType, buildCoord, playerNumber, fogGains, nil)
	}
	if e.MessageType() == soclog.MsgGameElements {
		x.backtrackTo(eState)
		if x.nextIfGameStateOrOver() == nil {
			return nil
		}
	} else if e.MessageType() != soclog.MsgGameState {
		return nil
	}

	if hasFogGold {
		// all:PlayerElement(SET NUM_PICK_GOLD_HEX_RESOURCES)
		e = x.next()
		pe, ok := msgAs[soclog.PlayerElement](e)
		if !ok || !e.IsToAll() || pe.Action != game.ElemSet ||
			pe.ElementType != game.ElemNumPickGoldHexResources {
			return nil
		}

		// p3:SimpleRequest(PROMPT_PICK_RESOURCES)
		if !x.atClient || x.st.playerNumber == x.atClientPN {
			e = x.next()
			sr, ok := msgAs[soclog.SimpleRequest](e)
			if !ok || e.FromClient || e.PN != x.st.playerNumber ||
				sr.RequestType != game.SimpleReqPromptPickResources {
				return nil
			}
		}
	}

	return x.finish(ActBuildPiece, pType, buildCoord, playerNumber, fogGains, nil)
}

func (x *Extractor) extractCancelBuiltPiece(e *soclog.Entry) *Action {
	// f3:CancelBuildRequest
	if !x.atClient {
		if !e.FromClient {
			return nil
		}
		e = x.next()
	}

	// all:CancelBuildRequest
	cbr, ok := msgAs[soclog.CancelBuildRequest](e)
	if !ok || !e.IsToAll() {
		return nil
	}
	pType := cbr.PieceType

	// all:GameState back to the pre-placement state
	e = x.next()
	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}

	return x.finish(ActCancelBuiltPiece, pType, 0, x.st.playerNumber, nil, nil)
}

func (x *Extractor) extractMovePiece(e *soclog.Entry) *Action {
	// f3:MovePiece
	var cli *soclog.MovePiece
	if !x.atClient {
		if !(e.FromClient && e.PN == x.st.playerNumber) {
			return nil
		}
		if mp, ok := msgAs[soclog.MovePiece](e); ok {
			cli = &mp
		}
		e = x.next()
	}

	// optional all:RevealFogHex when the move uncovers a hex
	if e == nil || !e.IsToAll() {
		return nil
	}
	hasFogGold, hasFogNonGold := false, false
	var fogGains *game.ResourceSet
	if rf, ok := msgAs[soclog.RevealFogHex](e); ok {
		if rf.HexType == game.HexGold {
			hasFogGold = true
		} else {
			hasFogNonGold = true
			if rf.HexType >= game.HexClay && rf.HexType <= game.HexWood {
				fogGains = &game.ResourceSet{}
				fogGains.Add(rf.HexType, 1)
			}
		}
		e = x.next()
		if e == nil || !e.IsToAll() {
			return nil
		}
	}

	// all:MovePiece, matching the client's request if we saw one
	mp, ok := msgAs[soclog.MovePiece](e)
	if !ok {
		return nil
	}
	pType, fromCoord, toCoord := mp.PieceType, mp.FromCoord, mp.ToCoord
	if cli != nil && (pType != cli.PieceType || fromCoord != cli.FromCoord || toCoord != cli.ToCoord) {
		return nil
	}

	// optional all:GameElements(LONGEST_ROAD_PLAYER)
	eState := x.snapshot()
	if ge := x.nextIfType(soclog.MsgGameElements); ge != nil {
		elems, _ := msgAs[soclog.GameElements](ge)
		if len(elems.ElementTypes) != 1 || elems.ElementTypes[0] != game.GameElemLongestRoadPlayer {
			x.backtrackTo(eState)
		}
	}

	if hasFogGold {
		// all:GameState, or the game-over pair if the move won
		if x.nextIfGameStateOrOver() == nil {
			return nil
		}

		if x.st.gameState != game.StateOver {
			// all:PlayerElement(SET NUM_PICK_GOLD_HEX_RESOURCES)
			e = x.next()
			pe, ok := msgAs[soclog.PlayerElement](e)
			if !ok || !e.IsToAll() || pe.Action != game.ElemSet ||
				pe.ElementType != game.ElemNumPickGoldHexResources {
				return nil
			}

			// p3:SimpleRequest(PROMPT_PICK_RESOURCES)
			if !(x.atClient && x.atClientPN != x.st.playerNumber) {
				e = x.next()
				sr, ok := msgAs[soclog.SimpleRequest](e)
				if !ok || e.FromClient || e.PN != x.st.playerNumber ||
					sr.RequestType != game.SimpleReqPromptPickResources {
					return nil
				}
			}
		}
	} else if hasFogNonGold {
		// all:PlayerElement(GAIN, news)
		e = x.next()
		pe, ok := msgAs[soclog.PlayerElement](e)
		if !ok || !e.IsToAll() || !pe.IsNews || pe.Action != game.ElemGain {
			return nil
		}
	}

	return x.finish(ActMovePiece, pType, fromCoord, toCoord, fogGains, nil)
}

func (x *Extractor) extractDiscard(e *soclog.Entry) *Action {
	// f2:Discard
	if !x.atClient {
		if !e.FromClient {
			return nil
		}
		e = x.next()
	}

	// p2:Discard with the real resources; an at-client log has either
	// this or the unknown-cards variant below, not both
	d, ok := msgAs[soclog.Discard](e)
	if !ok || e.FromClient {
		return nil
	}
	discardPN := d.PlayerNumber
	discards := d.Resources

	// !p2:Discard showing other players only the count
	if !x.atClient {
		e = x.next()
		if e == nil || e.FromClient || e.ExcludedPN == nil || e.MessageType() != soclog.MsgDiscard {
			return nil
		}
	}

	// all:GameState; WAITING_FOR_DISCARDS again if others still owe
	e = x.next()
	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}

	return x.finish(ActDiscard, discardPN, 0, 0, &discards, nil)
}

func (x *Extractor) extractChooseFreeResources(e *soclog.Entry) *Action {
	// f3:PickResources
	if !x.atClient {
		if !e.FromClient {
			return nil
		}
		e = x.next()
	}

	// all:PickResources with the chosen set
	pr, ok := msgAs[soclog.PickResources](e)
	if !ok || !e.IsToAll() {
		return nil
	}
	picks := pr.Resources

	// all:PlayerElement(SET NUM_PICK_GOLD_HEX_RESOURCES=0)
	e = x.next()
	pe, ok := msgAs[soclog.PlayerElement](e)
	if !ok || !e.IsToAll() || pe.Action != game.ElemSet || pe.Amount != 0 ||
		pe.ElementType != game.ElemNumPickGoldHexResources {
		return nil
	}

	// all:GameState, or all:Turn when init placement moves on
	prev := x.snapshot()
	e = x.next()
	if e == nil || !e.IsToAll() {
		return nil
	}
	if e.MessageType() == soclog.MsgTurn && x.st.gameState < game.StateRollOrCard {
		x.backtrackTo(prev)
	} else if e.MessageType() != soclog.MsgGameState {
		return nil
	}

	return x.finish(ActChooseFreeResources, 0, 0, 0, &picks, nil)
}

func (x *Extractor) extractChooseMoveRobberOrPirate(e *soclog.Entry) *Action {
	choice := 0

	// f3:ChoosePlayer with a move-robber or move-pirate sentinel
	if !x.atClient {
		if !e.FromClient {
			return nil
		}
		if cp, ok := msgAs[soclog.ChoosePlayer](e); ok && cp.Choice == game.ChoiceMoveRobber {
			choice = 1
		} else {
			choice = 2
		}
		e = x.next()
	}

	// all:GameState
	if e == nil || !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}
	if choice == 0 {
		switch x.st.gameState {
		case game.StatePlacingRobber:
			choice = 1
		case game.StatePlacingPirate:
			choice = 2
			// other states leave the choice unknown
		}
	}

	return x.finish(ActChooseMoveRobberOrPirate, choice, 0, 0, nil, nil)
}

func (x *Extractor) extractMoveRobberOrPirate(e *soclog.Entry) *Action {
	isPirate := x.st.gameState == game.StatePlacingPirate
	if !isPirate && x.st.gameState != game.StatePlacingRobber {
		return nil
	}

	// f3:MoveRobber
	if !x.atClient {
		if !(e.FromClient && e.PN == x.st.playerNumber) {
			return nil
		}
		e = x.next()
	}

	// all:MoveRobber; the pirate is sent as a negative coordinate
	mr, ok := msgAs[soclog.MoveRobber](e)
	if !ok || !e.IsToAll() {
		return nil
	}
	hexCoord := mr.Coord
	if isPirate && hexCoord < 0 {
		hexCoord = -hexCoord
	}

	// all:GameState if there are choices to make, or the game-over pair
	// if gaining Largest Army won, or nothing before the server's
	// RobberyResult which starts the next sequence
	prev := x.snapshot()
	e = x.next()
	if e == nil || e.FromClient {
		return nil
	}

	sawElems := false
	if ge, ok := msgAs[soclog.GameElements](e); ok {
		if len(ge.ElementTypes) != 1 || ge.ElementTypes[0] != game.GameElemCurrentPlayer || !e.IsToAll() {
			return nil
		}
		sawElems = true
		x.st.playerNumber = ge.Values[0]

		e = x.next()
		if e == nil || e.FromClient {
			return nil
		}
	}

	if e.MessageType() == soclog.MsgRobberyResult {
		x.backtrackTo(prev)
	} else if !e.IsToAll() || e.MessageType() != soclog.MsgGameState {
		return nil
	}

	if sawElems && x.st.gameState != game.StateOver {
		return nil
	}

	robberOrPirate := 1
	if isPirate {
		robberOrPirate = 2
	}
	return x.finish(ActMoveRobberOrPirate, robberOrPirate, hexCoord, 0, nil, nil)
}

func (x *Extractor) extractChooseRobberyVictim(e *soclog.Entry) *Action {
	// p3:ChoosePlayerRequest
	if e.FromClient || e.PN != x.st.playerNumber {
		return nil
	}

	chosenPN := -1

	// f3:ChoosePlayer with the victim, or the no-player sentinel
	if ce := x.nextIfType(soclog.MsgChoosePlayer); ce != nil {
		if !ce.FromClient || ce.PN != x.st.playerNumber {
			return nil
		}
		cp, _ := msgAs[soclog.ChoosePlayer](ce)
		chosenPN = cp.Choice
		if chosenPN == game.ChoiceNoPlayer {
			chosenPN = -2
		}
	} else if !x.atClient {
		return nil
	}

	return x.finish(ActChooseRobberyVictim, chosenPN, 0, 0, nil, nil)
}

func (x *Extractor) extractChooseRobClothOrResource(e *soclog.Entry) *Action {
	// p3:ChoosePlayer prompt echo
	if e.FromClient || e.PN != x.st.playerNumber {
		return nil
	}

	// f3:ChoosePlayer; a negative choice means cloth
	choice := 0
	if !x.atClient {
		e = x.next()
		cp, ok := msgAs[soclog.ChoosePlayer](e)
		if !ok || !e.FromClient || e.PN != x.st.playerNumber {
			return nil
		}
		if cp.Choice < 0 {
			choice = 2
		} else {
			choice = 1
		}
	}

	return x.finish(ActChooseRobClothOrResource, choice, 0, 0, nil, nil)
}

func robberyResources(rr soclog.RobberyResult) *game.ResourceSet {
	if rr.Resources != nil {
		rs := *rr.Resources
		return &rs
	}
	rs := &game.ResourceSet{}
	rs.Add(rr.ResType, rr.Amount)
	return rs
}

func (x *Extractor) extractRobPlayer(e *soclog.Entry) *Action {
	rr, ok := msgAs[soclog.RobberyResult](e)
	if !ok {
		return nil
	}
	var stolenRes *game.ResourceSet
	stolenPE := 0

	if e.IsToAll() {
		// cloth robbery is announced openly
		if rr.PEType == 0 {
			return nil
		}
		stolenPE = rr.PEType
	} else {
		// A stolen resource is reported three ways: to the perpetrator,
		// to the victim, and an unknown-type copy to everyone else. An
		// at-client log sees exactly one of the three.
		if !x.atClient || e.ExcludedPN == nil {
			// p3:RobberyResult to the perpetrator
			if e.FromClient || e.PN < 0 || rr.PEType != 0 {
				return nil
			}
			stolenRes = robberyResources(rr)

			if !x.atClient {
				// p2:RobberyResult to the victim
				e = x.next()
				if e == nil || e.FromClient || e.PN < 0 || e.MessageType() != soclog.MsgRobberyResult {
					return nil
				}

				e = x.next()
			}
		}

		// !p[3, 2]:RobberyResult for everyone else
		if !x.atClient || stolenRes == nil {
			rrx, ok := msgAs[soclog.RobberyResult](e)
			if !ok || e.ExcludedPN == nil {
				return nil
			}
			if stolenRes == nil {
				stolenRes = robberyResources(rrx)
			}
		}
	}

	// all:GameState, or the game-over pair
	if x.nextIfGameStateOrOver() == nil {
		return nil
	}

	if stolenRes != nil {
		return x.finish(ActRobPlayer, rr.VictimPN, 0, 0, stolenRes, nil)
	}
	return x.finish(ActRobPlayer, rr.VictimPN, stolenPE, rr.Amount, nil, nil)
}

func (x *Extractor) extractTradeBank(e *soclog.Entry) *Action {
	// f3:BankTrade
	if !x.atClient {
		if !(e.FromClient && e.PN == x.st.playerNumber) {
			return nil
		}
		e = x.next()
	}

	// all:BankTrade
	bt, ok := msgAs[soclog.BankTrade](e)
	if !ok || !e.IsToAll() {
		return nil
	}

	give, get := bt.Give, bt.Get
	return x.finish(ActTradeBank, 0, 0, 0, &give, &get)
}

func (x *Extractor) extractTradeMakeOffer(e *soclog.Entry) *Action {
	// f2:MakeOffer
	if !x.atClient {
		if !(e.FromClient && e.PN != -1) {
			return nil
		}
		e = x.next()
	}

	// all:MakeOffer
	mo, ok := msgAs[soclog.MakeOffer](e)
	if !ok || !e.IsToAll() {
		return nil
	}

	// all:ClearTradeMsg(-1)
	e = x.next()
	ct, ok := msgAs[soclog.ClearTradeMsg](e)
	if !ok || !e.IsToAll() || ct.PlayerNumber != -1 {
		return nil
	}

	give, get := mo.Give, mo.Get
	return x.finish(ActTradeMakeOffer, mo.FromPlayer, 0, 0, &give, &get)
}

func (x *Extractor) extractTradeClearOffer(e *soclog.Entry) *Action {
	// f3:ClearOffer
	if !x.atClient {
		if !(e.FromClient && e.PN != -1) {
			return nil
		}
		e = x.next()
	}

	// all:ClearOffer
	co, ok := msgAs[soclog.ClearOffer](e)
	if !ok || !e.IsToAll() {
		return nil
	}

	// all:ClearTradeMsg
	e = x.next()
	if _, ok := msgAs[soclog.ClearTradeMsg](e); !ok || !e.IsToAll() {
		return nil
	}

	return x.finish(ActTradeClearOffer, co.PlayerNumber, 0, 0, nil, nil)
}

func (x *Extractor) extractTradeRejectOffer(e *soclog.Entry) *Action {
	// f3:RejectOffer
	if !x.atClient {
		if !(e.FromClient && e.PN != -1) {
			return nil
		}
		e = x.next()
	}

	// all:RejectOffer
	ro, ok := msgAs[soclog.RejectOffer](e)
	if !ok || !e.IsToAll() {
		return nil
	}

	return x.finish(ActTradeRejectOffer, ro.PlayerNumber, 0, 0, nil, nil)
}

func (x *Extractor) extractTradeAcceptOffer(e *soclog.Entry) *Action {
	// f2:AcceptOffer
	if !x.atClient {
		if !(e.FromClient && e.PN != -1) {
			return nil
		}
		e = x.next()
	}

	// all:AcceptOffer with both resource sets
	ao, ok := msgAs[soclog.AcceptOffer](e)
	if !ok || !e.IsToAll() {
		return nil
	}

	// all:ClearOffer(-1)
	e = x.next()
	co, ok := msgAs[soclog.ClearOffer](e)
	if !ok || !e.IsToAll() || co.PlayerNumber != -1 {
		return nil
	}

	toAcc, toOff := ao.ToAccepting, ao.ToOffering
	return x.finish(ActTradeAcceptOffer, ao.OfferingPN, ao.AcceptingPN, 0, &toAcc, &toOff)
}

func (x *Extractor) extractAskSpecialBuilding(e *soclog.Entry) *Action {
	// f3:BuildRequest, usually with pieceType -1
	if !x.atClient {
		if !e.FromClient {
			return nil
		}
		e = x.next()
	}

	// all:PlayerElement(SET ASK_SPECIAL_BUILD=1)
	pe, ok := msgAs[soclog.PlayerElement](e)
	if !ok || !e.IsToAll() {
		return nil
	}
	if pe.Action != game.ElemSet || pe.Amount != 1 || pe.ElementType != game.ElemAskSpecialBuild {
		return nil
	}

	return x.finish(ActAskSpecialBuilding, pe.PlayerNumber, 0, 0, nil, nil)
}

func (x *Extractor) extractEndTurn(e *soclog.Entry) *Action {
	// f3:EndTurn
	if !x.atClient {
		if !e.FromClient {
			return nil
		}
		e = x.next()
		if e == nil {
			return nil
		}

		// Ending the turn mid Road Building returns the card:
		// all:DevCardAction(ADD_OLD) + all:PlayerElement(SET PLAYED_DEV_CARD_FLAG=0)
		if x.st.gameState == game.StatePlacingFreeRoad1 || x.st.gameState == game.StatePlacingFreeRoad2 {
			if dca, ok := msgAs[soclog.DevCardAction](e); ok && e.IsToAll() && dca.ActionType == game.DevCardAddOld {
				e = x.next()
				pe, ok := msgAs[soclog.PlayerElement](e)
				if !ok || !e.IsToAll() || pe.Action != game.ElemSet ||
					pe.ElementType != game.ElemPlayedDevCardFlag {
					return nil
				}

				e = x.next()
				if e == nil {
					return nil
				}
			}
		}
	}

	// Ending Special Building clears the ask flag first:
	// all:PlayerElement(SET ASK_SPECIAL_BUILD=0)
	if x.st.gameState == game.StateSpecialBuilding {
		pe, ok := msgAs[soclog.PlayerElement](e)
		if !ok || !e.IsToAll() || pe.ElementType != game.ElemAskSpecialBuild {
			return nil
		}
		e = x.next()
	}

	// all:ClearOffer(-1)
	if _, ok := msgAs[soclog.ClearOffer](e); !ok || !e.IsToAll() {
		return nil
	}

	return x.finish(ActEndTurn, 0, 0, 0, nil, nil)
}

// extractGameOver consumes the wrapup after GameState(OVER): revealed
// dev cards, final scores, then per-player stats.
func (x *Extractor) extractGameOver(e *soclog.Entry) *Action {
	winner := x.st.playerNumber

	// all:DevCardAction(ADD_OLD) per player with hidden cards
	if e.MessageType() == soclog.MsgDevCardAction {
		if !e.IsToAll() {
			return nil
		}
		for {
			e = x.next()
			if e == nil {
				return nil
			}
			if e.MessageType() != soclog.MsgDevCardAction {
				break
			}
		}
	}

	// all:GameStats
	if e.MessageType() != soclog.MsgGameStats {
		return nil
	}

	// p3:PlayerStats for each connected client
	for x.nextIfType(soclog.MsgPlayerStats) != nil {
	}

	return x.finish(ActGameOver, winner, 0, 0, nil, nil)
}
