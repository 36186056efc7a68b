// Package game holds the Settlers domain constants shared by the log model
// and the action extractor: game state codes, piece and resource types, and
// the numeric element/action codes carried by protocol messages.
package game

// Game state codes as they appear in GameState messages.
const (
	StateNew        = 0
	StateStart1A    = 5
	StateStart1B    = 6
	StateStart2A    = 10
	StateStart2B    = 11
	StateStart3A    = 12
	StateStart3B    = 13
	StateRollOrCard = 15
	StatePlay1      = 20

	StatePlacingRoad       = 30
	StatePlacingSettlement = 31
	StatePlacingCity       = 32
	StatePlacingRobber     = 33
	StatePlacingPirate     = 34
	StatePlacingShip       = 35
	StatePlacingFreeRoad1  = 40
	StatePlacingFreeRoad2  = 41

	StateWaitingForDiscards           = 50
	StateWaitingForRobChoosePlayer    = 51
	StateWaitingForDiscovery          = 52
	StateWaitingForMonopoly           = 53
	StateWaitingForRobberOrPirate     = 54
	StateWaitingForRobClothOrResource = 55
	StateWaitingForPickGoldResource   = 56

	StateSpecialBuilding = 100
	StateLoading         = 990
	StateOver            = 1000
)

// PieceType identifies a playing piece in placement messages.
type PieceType int

const (
	PieceRoad       PieceType = 0
	PieceSettlement PieceType = 1
	PieceCity       PieceType = 2
	PieceShip       PieceType = 3
)

func (p PieceType) String() string {
	switch p {
	case PieceRoad:
		return "road"
	case PieceSettlement:
		return "settlement"
	case PieceCity:
		return "city"
	case PieceShip:
		return "ship"
	default:
		return "piece?"
	}
}

// Dev card types in DevCardAction and PlayDevCardRequest messages.
const (
	DevCardUnknown = 0
	DevCardRoads   = 1
	DevCardDisc    = 2
	DevCardMono    = 3
	DevCardKnight  = 9
)

// Dev card action codes (DevCardAction.ActionType).
const (
	DevCardDraw   = 0
	DevCardPlay   = 1
	DevCardAddNew = 2
	DevCardAddOld = 3
)

// Hex types revealed by RevealFogHex.
const (
	HexClay   = 1
	HexOre    = 2
	HexSheep  = 3
	HexWheat  = 4
	HexWood   = 5
	HexDesert = 6
	HexGold   = 7
	HexWater  = 0
)

// PlayerElement action codes.
const (
	ElemSet  = 100
	ElemGain = 101
	ElemLose = 102
)

// PlayerElement element types used by the extractor. 1..5 double as the
// resource type codes.
const (
	ElemClay                    = 1
	ElemOre                     = 2
	ElemSheep                   = 3
	ElemWheat                   = 4
	ElemWood                    = 5
	ElemUnknownResource         = 6
	ElemNumKnights              = 15
	ElemAskSpecialBuild         = 16
	ElemPlayedDevCardFlag       = 19
	ElemNumPickGoldHexResources = 101
	ElemScenarioClothCount      = 106
)

// GameElements element types.
const (
	GameElemCurrentPlayer     = 4
	GameElemLargestArmyPlayer = 5
	GameElemLongestRoadPlayer = 6
)

// ChoosePlayer choice sentinels.
const (
	ChoiceNoPlayer   = -1
	ChoiceMoveRobber = -2
	ChoiceMovePirate = -3
)

// SimpleAction and SimpleRequest codes.
const (
	SimpleActDevCardBought       = 1
	SimpleActRsrcTypeMonopolized = 3
	SimpleReqPromptPickResources = 1
)

// Audience sentinels for entries that are not addressed to a seated player.
const (
	PNObserver            = -2
	PNReplyToUndetermined = -3
)
