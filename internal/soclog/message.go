// Package soclog models recorded game event logs: the protocol messages a
// game server wrote while a game ran, one entry per line, together with the
// text format used to store them on disk.
package soclog

import "github.com/akvileja/soclog-tools/internal/game"

// MessageType identifies one protocol message kind.
type MessageType int

const (
	MsgUnknown MessageType = iota
	MsgVersion
	MsgNewGame
	MsgNewGameWithOptions
	MsgStartGame
	MsgTurn
	MsgGameState
	MsgGameElements
	MsgPlayerElement
	MsgPlayerElements
	MsgRollDice
	MsgRollDicePrompt
	MsgDiceResult
	MsgDiceResultResources
	MsgResourceCount
	MsgPutPiece
	MsgBuildRequest
	MsgCancelBuildRequest
	MsgMovePiece
	MsgMoveRobber
	MsgRevealFogHex
	MsgBuyDevCardRequest
	MsgPlayDevCardRequest
	MsgDevCardAction
	MsgInventoryItemAction
	MsgDiscard
	MsgDiscardRequest
	MsgPickResources
	MsgPickResourceType
	MsgChoosePlayer
	MsgChoosePlayerRequest
	MsgRobberyResult
	MsgBankTrade
	MsgMakeOffer
	MsgClearOffer
	MsgClearTradeMsg
	MsgRejectOffer
	MsgAcceptOffer
	MsgEndTurn
	MsgGameStats
	MsgPlayerStats
	MsgSimpleRequest
	MsgSimpleAction
	MsgSVPTextMessage
	MsgGameTextMsg
	MsgGameServerText
	MsgChangeFace
)

// Message is one decoded protocol message.
type Message interface {
	Type() MessageType
}

// Version announces the server's protocol version. Always the first entry.
type Version struct {
	Number int
}

// NewGame announces game creation.
type NewGame struct {
	Game string
}

// NewGameWithOptions announces game creation with a game-option string.
type NewGameWithOptions struct {
	Game string
	Opts string
}

// StartGame announces the start of play, with the game state at that moment.
type StartGame struct {
	GameState int
}

// Turn begins a player's turn and carries the new game state.
type Turn struct {
	PlayerNumber int
	GameState    int
}

// GameState announces a game state change.
type GameState struct {
	State int
}

// GameElements sets game-level numeric fields (current player, largest army
// holder, and so on).
type GameElements struct {
	ElementTypes []int
	Values       []int
}

// PlayerElement sets, gains, or loses one numeric field of one player.
type PlayerElement struct {
	PlayerNumber int
	Action       int // game.ElemSet, game.ElemGain, game.ElemLose
	ElementType  int
	Amount       int
	IsNews       bool
}

// PlayerElements applies one action to several element types at once.
type PlayerElements struct {
	PlayerNumber int
	Action       int
	ElementTypes []int
	Amounts      []int
}

// RollDice is a client's request to roll.
type RollDice struct{}

// RollDicePrompt tells clients whose roll the game is waiting for.
type RollDicePrompt struct {
	PlayerNumber int
}

// DiceResult announces the rolled total.
type DiceResult struct {
	Result int
}

// DiceResultResources details each player's gains from a roll.
type DiceResultResources struct {
	PlayerNumbers []int
	Totals        []int
	Gains         []game.ResourceSet
}

// ResourceCount announces one player's hand size.
type ResourceCount struct {
	PlayerNumber int
	Count        int
}

// PutPiece announces a piece placement.
type PutPiece struct {
	PlayerNumber int
	PieceType    int
	Coord        int
}

// BuildRequest is a client's request to build a piece type, or (with
// PieceType -1) to start Special Building.
type BuildRequest struct {
	PieceType int
}

// CancelBuildRequest cancels the current placement or declines Special
// Building.
type CancelBuildRequest struct {
	PieceType int
}

// MovePiece moves an already-placed piece (ships).
type MovePiece struct {
	PlayerNumber int
	PieceType    int
	FromCoord    int
	ToCoord      int
}

// MoveRobber moves the robber, or the pirate when Coord is negative.
type MoveRobber struct {
	PlayerNumber int
	Coord        int
}

// RevealFogHex reveals a fog hex's type and dice number.
type RevealFogHex struct {
	Coord   int
	HexType int
	DiceNum int
}

// BuyDevCardRequest is a client's request to buy a development card.
type BuyDevCardRequest struct{}

// PlayDevCardRequest is a client's request to play a development card.
type PlayDevCardRequest struct {
	DevCard int
}

// DevCardAction announces a development card draw, play, or reveal.
// CardTypes is non-nil only for multi-card reveals at end of game.
type DevCardAction struct {
	PlayerNumber int
	ActionType   int // game.DevCardDraw, Play, AddNew, AddOld
	CardType     int
	CardTypes    []int
}

// InventoryItemAction announces a non-card inventory item change.
type InventoryItemAction struct {
	PlayerNumber int
	Action       int
	ItemType     int
}

// Discard announces or requests a discard of resources.
type Discard struct {
	PlayerNumber int
	Resources    game.ResourceSet
}

// DiscardRequest tells a client how many resources to discard.
type DiscardRequest struct {
	NumDiscards int
}

// PickResources announces a player's free resource picks (gold hex or
// Discovery card).
type PickResources struct {
	PlayerNumber int
	Resources    game.ResourceSet
	Reason       int
}

// PickResourceType is a client's Monopoly resource choice.
type PickResourceType struct {
	ResourceType int
}

// ChoosePlayer is a client's robbery-victim choice, or a server prompt echo.
// Choice may be a player number or one of the game.Choice* sentinels.
type ChoosePlayer struct {
	Choice int
}

// ChoosePlayerRequest asks a client to choose a robbery victim.
type ChoosePlayerRequest struct {
	Choices       []bool
	CanChooseNone bool
}

// RobberyResult reports a completed robbery. PEType is nonzero when the
// stolen amount is a player element (scenario cloth) instead of a resource.
// Resources is non-nil when a whole set was taken instead of one type.
type RobberyResult struct {
	PerpPN     int
	VictimPN   int
	ResType    int
	PEType     int
	Amount     int
	IsGainLose bool
	Resources  *game.ResourceSet
}

// BankTrade reports a trade with the bank or a port.
type BankTrade struct {
	PlayerNumber int
	Give         game.ResourceSet
	Get          game.ResourceSet
}

// MakeOffer announces a player-to-player trade offer.
type MakeOffer struct {
	FromPlayer int
	To         []bool
	Give       game.ResourceSet
	Get        game.ResourceSet
}

// ClearOffer clears one player's offer, or all offers when PlayerNumber
// is -1.
type ClearOffer struct {
	PlayerNumber int
}

// ClearTradeMsg clears trade-response text shown for one player, or for
// all players when PlayerNumber is -1.
type ClearTradeMsg struct {
	PlayerNumber int
}

// RejectOffer announces a player rejecting the current offers.
type RejectOffer struct {
	PlayerNumber int
}

// AcceptOffer reports a completed player trade.
type AcceptOffer struct {
	AcceptingPN int
	OfferingPN  int
	ToAccepting game.ResourceSet
	ToOffering  game.ResourceSet
}

// EndTurn is a client's request to end their turn.
type EndTurn struct{}

// GameStats reports final scores.
type GameStats struct {
	Scores []int
	Robots []bool
}

// PlayerStats details one player's statistics at end of game.
type PlayerStats struct {
	StatsType int
	Values    []int
}

// SimpleRequest is a generic client request or server prompt.
type SimpleRequest struct {
	PlayerNumber int
	RequestType  int
	Value1       int
	Value2       int
}

// SimpleAction is a generic announced action.
type SimpleAction struct {
	PlayerNumber int
	ActionType   int
	Value1       int
	Value2       int
}

// SVPTextMessage explains awarded special victory points.
type SVPTextMessage struct {
	PlayerNumber int
	SVP          int
	Desc         string
}

// GameTextMsg is player chat.
type GameTextMsg struct {
	Nickname string
	Text     string
}

// GameServerText is server-generated prose.
type GameServerText struct {
	Text string
}

// ChangeFace is a cosmetic face-icon change.
type ChangeFace struct {
	PlayerNumber int
	FaceID       int
}

func (Version) Type() MessageType             { return MsgVersion }
func (NewGame) Type() MessageType             { return MsgNewGame }
func (NewGameWithOptions) Type() MessageType  { return MsgNewGameWithOptions }
func (StartGame) Type() MessageType           { return MsgStartGame }
func (Turn) Type() MessageType                { return MsgTurn }
func (GameState) Type() MessageType           { return MsgGameState }
func (GameElements) Type() MessageType        { return MsgGameElements }
func (PlayerElement) Type() MessageType       { return MsgPlayerElement }
func (PlayerElements) Type() MessageType      { return MsgPlayerElements }
func (RollDice) Type() MessageType            { return MsgRollDice }
func (RollDicePrompt) Type() MessageType      { return MsgRollDicePrompt }
func (DiceResult) Type() MessageType          { return MsgDiceResult }
func (DiceResultResources) Type() MessageType { return MsgDiceResultResources }
func (ResourceCount) Type() MessageType       { return MsgResourceCount }
func (PutPiece) Type() MessageType            { return MsgPutPiece }
func (BuildRequest) Type() MessageType        { return MsgBuildRequest }
func (CancelBuildRequest) Type() MessageType  { return MsgCancelBuildRequest }
func (MovePiece) Type() MessageType           { return MsgMovePiece }
func (MoveRobber) Type() MessageType          { return MsgMoveRobber }
func (RevealFogHex) Type() MessageType        { return MsgRevealFogHex }
func (BuyDevCardRequest) Type() MessageType   { return MsgBuyDevCardRequest }
func (PlayDevCardRequest) Type() MessageType  { return MsgPlayDevCardRequest }
func (DevCardAction) Type() MessageType       { return MsgDevCardAction }
func (InventoryItemAction) Type() MessageType { return MsgInventoryItemAction }
func (Discard) Type() MessageType             { return MsgDiscard }
func (DiscardRequest) Type() MessageType      { return MsgDiscardRequest }
func (PickResources) Type() MessageType       { return MsgPickResources }
func (PickResourceType) Type() MessageType    { return MsgPickResourceType }
func (ChoosePlayer) Type() MessageType        { return MsgChoosePlayer }
func (ChoosePlayerRequest) Type() MessageType { return MsgChoosePlayerRequest }
func (RobberyResult) Type() MessageType       { return MsgRobberyResult }
func (BankTrade) Type() MessageType           { return MsgBankTrade }
func (MakeOffer) Type() MessageType           { return MsgMakeOffer }
func (ClearOffer) Type() MessageType          { return MsgClearOffer }
func (ClearTradeMsg) Type() MessageType       { return MsgClearTradeMsg }
func (RejectOffer) Type() MessageType         { return MsgRejectOffer }
func (AcceptOffer) Type() MessageType         { return MsgAcceptOffer }
func (EndTurn) Type() MessageType             { return MsgEndTurn }
func (GameStats) Type() MessageType           { return MsgGameStats }
func (PlayerStats) Type() MessageType         { return MsgPlayerStats }
func (SimpleRequest) Type() MessageType       { return MsgSimpleRequest }
func (SimpleAction) Type() MessageType        { return MsgSimpleAction }
func (SVPTextMessage) Type() MessageType      { return MsgSVPTextMessage }
func (GameTextMsg) Type() MessageType         { return MsgGameTextMsg }
func (GameServerText) Type() MessageType      { return MsgGameServerText }
func (ChangeFace) Type() MessageType          { return MsgChangeFace }

var messageTypeNames = map[MessageType]string{
	MsgVersion:             "Version",
	MsgNewGame:             "NewGame",
	MsgNewGameWithOptions:  "NewGameWithOptions",
	MsgStartGame:           "StartGame",
	MsgTurn:                "Turn",
	MsgGameState:           "GameState",
	MsgGameElements:        "GameElements",
	MsgPlayerElement:       "PlayerElement",
	MsgPlayerElements:      "PlayerElements",
	MsgRollDice:            "RollDice",
	MsgRollDicePrompt:      "RollDicePrompt",
	MsgDiceResult:          "DiceResult",
	MsgDiceResultResources: "DiceResultResources",
	MsgResourceCount:       "ResourceCount",
	MsgPutPiece:            "PutPiece",
	MsgBuildRequest:        "BuildRequest",
	MsgCancelBuildRequest:  "CancelBuildRequest",
	MsgMovePiece:           "MovePiece",
	MsgMoveRobber:          "MoveRobber",
	MsgRevealFogHex:        "RevealFogHex",
	MsgBuyDevCardRequest:   "BuyDevCardRequest",
	MsgPlayDevCardRequest:  "PlayDevCardRequest",
	MsgDevCardAction:       "DevCardAction",
	MsgInventoryItemAction: "InventoryItemAction",
	MsgDiscard:             "Discard",
	MsgDiscardRequest:      "DiscardRequest",
	MsgPickResources:       "PickResources",
	MsgPickResourceType:    "PickResourceType",
	MsgChoosePlayer:        "ChoosePlayer",
	MsgChoosePlayerRequest: "ChoosePlayerRequest",
	MsgRobberyResult:       "RobberyResult",
	MsgBankTrade:           "BankTrade",
	MsgMakeOffer:           "MakeOffer",
	MsgClearOffer:          "ClearOffer",
	MsgClearTradeMsg:       "ClearTradeMsg",
	MsgRejectOffer:         "RejectOffer",
	MsgAcceptOffer:         "AcceptOffer",
	MsgEndTurn:             "EndTurn",
	MsgGameStats:           "GameStats",
	MsgPlayerStats:         "PlayerStats",
	MsgSimpleRequest:       "SimpleRequest",
	MsgSimpleAction:        "SimpleAction",
	MsgSVPTextMessage:      "SVPTextMessage",
	MsgGameTextMsg:         "GameTextMsg",
	MsgGameServerText:      "GameServerText",
	MsgChangeFace:          "ChangeFace",
}

func (t MessageType) String() string {
	if s, ok := messageTypeNames[t]; ok {
		return s
	}
	return "MessageType?"
}

var messageTypesByName = func() map[string]MessageType {
	m := make(map[string]MessageType, len(messageTypeNames))
	for t, s := range messageTypeNames {
		m[s] = t
	}
	return m
}()
