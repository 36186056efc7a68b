package soclog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/akvileja/soclog-tools/internal/game"
)

// Message bodies are "key=value|key=value" lists. Integer lists use commas,
// resource-set lists use "/" between sets, and free-text values are always
// the final field so they may contain "|".

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func joinBools(bs []bool) string {
	parts := make([]string, len(bs))
	for i, b := range bs {
		parts[i] = strconv.FormatBool(b)
	}
	return strings.Join(parts, ",")
}

func joinResourceSets(sets []game.ResourceSet) string {
	parts := make([]string, len(sets))
	for i, rs := range sets {
		parts[i] = rs.String()
	}
	return strings.Join(parts, "/")
}

func encodeMessageBody(m Message) string {
	switch m := m.(type) {
	case Version:
		return fmt.Sprintf("number=%d", m.Number)
	case NewGame:
		return fmt.Sprintf("game=%s", m.Game)
	case NewGameWithOptions:
		return fmt.Sprintf("game=%s|opts=%s", m.Game, m.Opts)
	case StartGame:
		return fmt.Sprintf("gameState=%d", m.GameState)
	case Turn:
		return fmt.Sprintf("playerNumber=%d|gameState=%d", m.PlayerNumber, m.GameState)
	case GameState:
		return fmt.Sprintf("state=%d", m.State)
	case GameElements:
		return fmt.Sprintf("types=%s|values=%s", joinInts(m.ElementTypes), joinInts(m.Values))
	case PlayerElement:
		s := fmt.Sprintf("playerNumber=%d|action=%d|elementType=%d|amount=%d",
			m.PlayerNumber, m.Action, m.ElementType, m.Amount)
		if m.IsNews {
			s += "|news=true"
		}
		return s
	case PlayerElements:
		return fmt.Sprintf("playerNumber=%d|action=%d|types=%s|amounts=%s",
			m.PlayerNumber, m.Action, joinInts(m.ElementTypes), joinInts(m.Amounts))
	case RollDice:
		return ""
	case RollDicePrompt:
		return fmt.Sprintf("playerNumber=%d", m.PlayerNumber)
	case DiceResult:
		return fmt.Sprintf("result=%d", m.Result)
	case DiceResultResources:
		return fmt.Sprintf("players=%s|totals=%s|gains=%s",
			joinInts(m.PlayerNumbers), joinInts(m.Totals), joinResourceSets(m.Gains))
	case ResourceCount:
		return fmt.Sprintf("playerNumber=%d|count=%d", m.PlayerNumber, m.Count)
	case PutPiece:
		return fmt.Sprintf("playerNumber=%d|pieceType=%d|coord=%d",
			m.PlayerNumber, m.PieceType, m.Coord)
	case BuildRequest:
		return fmt.Sprintf("pieceType=%d", m.PieceType)
	case CancelBuildRequest:
		return fmt.Sprintf("pieceType=%d", m.PieceType)
	case MovePiece:
		return fmt.Sprintf("playerNumber=%d|pieceType=%d|fromCoord=%d|toCoord=%d",
			m.PlayerNumber, m.PieceType, m.FromCoord, m.ToCoord)
	case MoveRobber:
		return fmt.Sprintf("playerNumber=%d|coord=%d", m.PlayerNumber, m.Coord)
	case RevealFogHex:
		return fmt.Sprintf("coord=%d|hexType=%d|diceNum=%d", m.Coord, m.HexType, m.DiceNum)
	case BuyDevCardRequest:
		return ""
	case PlayDevCardRequest:
		return fmt.Sprintf("devCard=%d", m.DevCard)
	case DevCardAction:
		s := fmt.Sprintf("playerNumber=%d|actionType=%d|cardType=%d",
			m.PlayerNumber, m.ActionType, m.CardType)
		if m.CardTypes != nil {
			s += "|cardTypes=" + joinInts(m.CardTypes)
		}
		return s
	case InventoryItemAction:
		return fmt.Sprintf("playerNumber=%d|action=%d|itemType=%d",
			m.PlayerNumber, m.Action, m.ItemType)
	case Discard:
		return fmt.Sprintf("playerNumber=%d|resources=%s", m.PlayerNumber, m.Resources)
	case DiscardRequest:
		return fmt.Sprintf("numDiscards=%d", m.NumDiscards)
	case PickResources:
		return fmt.Sprintf("playerNumber=%d|reason=%d|resources=%s",
			m.PlayerNumber, m.Reason, m.Resources)
	case PickResourceType:
		return fmt.Sprintf("resourceType=%d", m.ResourceType)
	case ChoosePlayer:
		return fmt.Sprintf("choice=%d", m.Choice)
	case ChoosePlayerRequest:
		s := "choices=" + joinBools(m.Choices)
		if m.CanChooseNone {
			s += "|canChooseNone=true"
		}
		return s
	case RobberyResult:
		s := fmt.Sprintf("perpPN=%d|victimPN=%d", m.PerpPN, m.VictimPN)
		switch {
		case m.PEType != 0:
			s += fmt.Sprintf("|peType=%d", m.PEType)
		case m.Resources != nil:
			s += fmt.Sprintf("|resources=%s", m.Resources)
		default:
			s += fmt.Sprintf("|resType=%d", m.ResType)
		}
		s += fmt.Sprintf("|amount=%d", m.Amount)
		if m.IsGainLose {
			s += "|gainLose=true"
		}
		return s
	case BankTrade:
		return fmt.Sprintf("playerNumber=%d|give=%s|get=%s", m.PlayerNumber, m.Give, m.Get)
	case MakeOffer:
		return fmt.Sprintf("from=%d|to=%s|give=%s|get=%s",
			m.FromPlayer, joinBools(m.To), m.Give, m.Get)
	case ClearOffer:
		return fmt.Sprintf("playerNumber=%d", m.PlayerNumber)
	case ClearTradeMsg:
		return fmt.Sprintf("playerNumber=%d", m.PlayerNumber)
	case RejectOffer:
		return fmt.Sprintf("playerNumber=%d", m.PlayerNumber)
	case AcceptOffer:
		return fmt.Sprintf("accepting=%d|offering=%d|toAccepting=%s|toOffering=%s",
			m.AcceptingPN, m.OfferingPN, m.ToAccepting, m.ToOffering)
	case EndTurn:
		return ""
	case GameStats:
		return fmt.Sprintf("scores=%s|robots=%s", joinInts(m.Scores), joinBools(m.Robots))
	case PlayerStats:
		return fmt.Sprintf("statsType=%d|values=%s", m.StatsType, joinInts(m.Values))
	case SimpleRequest:
		return fmt.Sprintf("playerNumber=%d|requestType=%d|v1=%d|v2=%d",
			m.PlayerNumber, m.RequestType, m.Value1, m.Value2)
	case SimpleAction:
		return fmt.Sprintf("playerNumber=%d|actionType=%d|v1=%d|v2=%d",
			m.PlayerNumber, m.ActionType, m.Value1, m.Value2)
	case SVPTextMessage:
		return fmt.Sprintf("playerNumber=%d|svp=%d|desc=%s", m.PlayerNumber, m.SVP, m.Desc)
	case GameTextMsg:
		return fmt.Sprintf("nickname=%s|text=%s", m.Nickname, m.Text)
	case GameServerText:
		return fmt.Sprintf("text=%s", m.Text)
	case ChangeFace:
		return fmt.Sprintf("playerNumber=%d|faceId=%d", m.PlayerNumber, m.FaceID)
	default:
		return ""
	}
}

// fieldReader accumulates the first decode error so each message case can
// read its fields without per-field checks.
type fieldReader struct {
	typ  MessageType
	m    map[string]string
	tail string // raw body, for locating trailing free-text fields
	err  error
}

func newFieldReader(typ MessageType, body string) *fieldReader {
	fr := &fieldReader{typ: typ, m: map[string]string{}, tail: body}
	if body == "" {
		return fr
	}
	for _, part := range strings.Split(body, "|") {
		if k, v, ok := strings.Cut(part, "="); ok {
			// later duplicates win, which only matters for broken input
			fr.m[k] = v
		}
	}
	return fr
}

func (fr *fieldReader) fail(key string, cause error) {
	if fr.err == nil {
		if cause != nil {
			fr.err = fmt.Errorf("soclog: %s: field %q: %w", fr.typ, key, cause)
		} else {
			fr.err = fmt.Errorf("soclog: %s: missing field %q", fr.typ, key)
		}
	}
}

func (fr *fieldReader) intField(key string) int {
	v, ok := fr.m[key]
	if !ok {
		fr.fail(key, nil)
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fr.fail(key, err)
		return 0
	}
	return n
}

func (fr *fieldReader) strField(key string) string {
	v, ok := fr.m[key]
	if !ok {
		fr.fail(key, nil)
	}
	return v
}

func (fr *fieldReader) boolField(key string) bool {
	return fr.m[key] == "true"
}

func (fr *fieldReader) intsField(key string) []int {
	v, ok := fr.m[key]
	if !ok {
		fr.fail(key, nil)
		return nil
	}
	return fr.parseInts(key, v)
}

// optIntsField is like intsField but a missing key yields nil.
func (fr *fieldReader) optIntsField(key string) []int {
	v, ok := fr.m[key]
	if !ok {
		return nil
	}
	return fr.parseInts(key, v)
}

func (fr *fieldReader) parseInts(key, v string) []int {
	if v == "" {
		return []int{}
	}
	parts := strings.Split(v, ",")
	ns := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			fr.fail(key, err)
			return nil
		}
		ns[i] = n
	}
	return ns
}

func (fr *fieldReader) boolsField(key string) []bool {
	v, ok := fr.m[key]
	if !ok {
		fr.fail(key, nil)
		return nil
	}
	if v == "" {
		return []bool{}
	}
	parts := strings.Split(v, ",")
	bs := make([]bool, len(parts))
	for i, p := range parts {
		bs[i] = p == "true"
	}
	return bs
}

func (fr *fieldReader) resourcesField(key string) game.ResourceSet {
	v, ok := fr.m[key]
	if !ok {
		fr.fail(key, nil)
		return game.ResourceSet{}
	}
	rs, err := game.ParseResourceSet(v)
	if err != nil {
		fr.fail(key, err)
	}
	return rs
}

func (fr *fieldReader) resourceSetsField(key string) []game.ResourceSet {
	v, ok := fr.m[key]
	if !ok {
		fr.fail(key, nil)
		return nil
	}
	if v == "" {
		return []game.ResourceSet{}
	}
	parts := strings.Split(v, "/")
	sets := make([]game.ResourceSet, len(parts))
	for i, p := range parts {
		rs, err := game.ParseResourceSet(p)
		if err != nil {
			fr.fail(key, err)
			return nil
		}
		sets[i] = rs
	}
	return sets
}

// textField returns everything after "key=" in the raw body, so free text
// may contain "|". The field must be last when encoded.
func (fr *fieldReader) textField(key string) string {
	marker := key + "="
	if strings.HasPrefix(fr.tail, marker) {
		return fr.tail[len(marker):]
	}
	if i := strings.Index(fr.tail, "|"+marker); i >= 0 {
		return fr.tail[i+1+len(marker):]
	}
	fr.fail(key, nil)
	return ""
}

func decodeMessageBody(typ MessageType, body string) (Message, error) {
	fr := newFieldReader(typ, body)
	var msg Message
	switch typ {
	case MsgVersion:
		msg = Version{Number: fr.intField("number")}
	case MsgNewGame:
		msg = NewGame{Game: fr.strField("game")}
	case MsgNewGameWithOptions:
		msg = NewGameWithOptions{Game: fr.strField("game"), Opts: fr.textField("opts")}
	case MsgStartGame:
		msg = StartGame{GameState: fr.intField("gameState")}
	case MsgTurn:
		msg = Turn{PlayerNumber: fr.intField("playerNumber"), GameState: fr.intField("gameState")}
	case MsgGameState:
		msg = GameState{State: fr.intField("state")}
	case MsgGameElements:
		msg = GameElements{ElementTypes: fr.intsField("types"), Values: fr.intsField("values")}
	case MsgPlayerElement:
		msg = PlayerElement{
			PlayerNumber: fr.intField("playerNumber"),
			Action:       fr.intField("action"),
			ElementType:  fr.intField("elementType"),
			Amount:       fr.intField("amount"),
			IsNews:       fr.boolField("news"),
		}
	case MsgPlayerElements:
		msg = PlayerElements{
			PlayerNumber: fr.intField("playerNumber"),
			Action:       fr.intField("action"),
			ElementTypes: fr.intsField("types"),
			Amounts:      fr.intsField("amounts"),
		}
	case MsgRollDice:
		msg = RollDice{}
	case MsgRollDicePrompt:
		msg = RollDicePrompt{PlayerNumber: fr.intField("playerNumber")}
	case MsgDiceResult:
		msg = DiceResult{Result: fr.intField("result")}
	case MsgDiceResultResources:
		msg = DiceResultResources{
			PlayerNumbers: fr.intsField("players"),
			Totals:        fr.intsField("totals"),
			Gains:         fr.resourceSetsField("gains"),
		}
	case MsgResourceCount:
		msg = ResourceCount{PlayerNumber: fr.intField("playerNumber"), Count: fr.intField("count")}
	case MsgPutPiece:
		msg = PutPiece{
			PlayerNumber: fr.intField("playerNumber"),
			PieceType:    fr.intField("pieceType"),
			Coord:        fr.intField("coord"),
		}
	case MsgBuildRequest:
		msg = BuildRequest{PieceType: fr.intField("pieceType")}
	case MsgCancelBuildRequest:
		msg = CancelBuildRequest{PieceType: fr.intField("pieceType")}
	case MsgMovePiece:
		msg = MovePiece{
			PlayerNumber: fr.intField("playerNumber"),
			PieceType:    fr.intField("pieceType"),
			FromCoord:    fr.intField("fromCoord"),
			ToCoord:      fr.intField("toCoord"),
		}
	case MsgMoveRobber:
		msg = MoveRobber{PlayerNumber: fr.intField("playerNumber"), Coord: fr.intField("coord")}
	case MsgRevealFogHex:
		msg = RevealFogHex{
			Coord:   fr.intField("coord"),
			HexType: fr.intField("hexType"),
			DiceNum: fr.intField("diceNum"),
		}
	case MsgBuyDevCardRequest:
		msg = BuyDevCardRequest{}
	case MsgPlayDevCardRequest:
		msg = PlayDevCardRequest{DevCard: fr.intField("devCard")}
	case MsgDevCardAction:
		msg = DevCardAction{
			PlayerNumber: fr.intField("playerNumber"),
			ActionType:   fr.intField("actionType"),
			CardType:     fr.intField("cardType"),
			CardTypes:    fr.optIntsField("cardTypes"),
		}
	case MsgInventoryItemAction:
		msg = InventoryItemAction{
			PlayerNumber: fr.intField("playerNumber"),
			Action:       fr.intField("action"),
			ItemType:     fr.intField("itemType"),
		}
	case MsgDiscard:
		msg = Discard{PlayerNumber: fr.intField("playerNumber"), Resources: fr.resourcesField("resources")}
	case MsgDiscardRequest:
		msg = DiscardRequest{NumDiscards: fr.intField("numDiscards")}
	case MsgPickResources:
		msg = PickResources{
			PlayerNumber: fr.intField("playerNumber"),
			Reason:       fr.intField("reason"),
			Resources:    fr.resourcesField("resources"),
		}
	case MsgPickResourceType:
		msg = PickResourceType{ResourceType: fr.intField("resourceType")}
	case MsgChoosePlayer:
		msg = ChoosePlayer{Choice: fr.intField("choice")}
	case MsgChoosePlayerRequest:
		msg = ChoosePlayerRequest{Choices: fr.boolsField("choices"), CanChooseNone: fr.boolField("canChooseNone")}
	case MsgRobberyResult:
		m := RobberyResult{
			PerpPN:     fr.intField("perpPN"),
			VictimPN:   fr.intField("victimPN"),
			Amount:     fr.intField("amount"),
			IsGainLose: fr.boolField("gainLose"),
		}
		if _, ok := fr.m["peType"]; ok {
			m.PEType = fr.intField("peType")
		} else if _, ok := fr.m["resources"]; ok {
			rs := fr.resourcesField("resources")
			m.Resources = &rs
		} else {
			m.ResType = fr.intField("resType")
		}
		msg = m
	case MsgBankTrade:
		msg = BankTrade{
			PlayerNumber: fr.intField("playerNumber"),
			Give:         fr.resourcesField("give"),
			Get:          fr.resourcesField("get"),
		}
	case MsgMakeOffer:
		msg = MakeOffer{
			FromPlayer: fr.intField("from"),
			To:         fr.boolsField("to"),
			Give:       fr.resourcesField("give"),
			Get:        fr.resourcesField("get"),
		}
	case MsgClearOffer:
		msg = ClearOffer{PlayerNumber: fr.intField("playerNumber")}
	case MsgClearTradeMsg:
		msg = ClearTradeMsg{PlayerNumber: fr.intField("playerNumber")}
	case MsgRejectOffer:
		msg = RejectOffer{PlayerNumber: fr.intField("playerNumber")}
	case MsgAcceptOffer:
		msg = AcceptOffer{
			AcceptingPN: fr.intField("accepting"),
			OfferingPN:  fr.intField("offering"),
			ToAccepting: fr.resourcesField("toAccepting"),
			ToOffering:  fr.resourcesField("toOffering"),
		}
	case MsgEndTurn:
		msg = EndTurn{}
	case MsgGameStats:
		msg = GameStats{Scores: fr.intsField("scores"), Robots: fr.boolsField("robots")}
	case MsgPlayerStats:
		msg = PlayerStats{StatsType: fr.intField("statsType"), Values: fr.intsField("values")}
	case MsgSimpleRequest:
		msg = SimpleRequest{
			PlayerNumber: fr.intField("playerNumber"),
			RequestType:  fr.intField("requestType"),
			Value1:       fr.intField("v1"),
			Value2:       fr.intField("v2"),
		}
	case MsgSimpleAction:
		msg = SimpleAction{
			PlayerNumber: fr.intField("playerNumber"),
			ActionType:   fr.intField("actionType"),
			Value1:       fr.intField("v1"),
			Value2:       fr.intField("v2"),
		}
	case MsgSVPTextMessage:
		msg = SVPTextMessage{
			PlayerNumber: fr.intField("playerNumber"),
			SVP:          fr.intField("svp"),
			Desc:         fr.textField("desc"),
		}
	case MsgGameTextMsg:
		msg = GameTextMsg{Nickname: fr.strField("nickname"), Text: fr.textField("text")}
	case MsgGameServerText:
		msg = GameServerText{Text: fr.textField("text")}
	case MsgChangeFace:
		msg = ChangeFace{PlayerNumber: fr.intField("playerNumber"), FaceID: fr.intField("faceId")}
	default:
		return nil, fmt.Errorf("soclog: cannot decode message type %v", typ)
	}
	if fr.err != nil {
		return nil, fr.err
	}
	return msg, nil
}
