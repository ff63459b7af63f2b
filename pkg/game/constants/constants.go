package constants

const (
	// MaxPlayers is the number of seats in a session. Filling the last seat starts the game.
	MaxPlayers int = 4
	// MinPlayers is the number of players required before the host can start early
	MinPlayers int = 2
	// VictoryPointsTarget is the number of victory points needed to win
	VictoryPointsTarget int = 7
	// MaxCardsBeforeDiscard is the hand size above which a rolled 7 forces a discard
	MaxCardsBeforeDiscard int = 6
	// PreparingRounds is the number of initial placement rounds
	PreparingRounds int = 2

	// LongestRoadMinimum is the road length required for the longest road award
	LongestRoadMinimum int = 5
	// LongestRoadBonus is the victory point bonus for the longest road
	LongestRoadBonus int = 2
	// LargestArmyMinimum is the number of knights required for the largest army award
	LargestArmyMinimum int = 3
	// LargestArmyBonus is the victory point bonus for the largest army
	LargestArmyBonus int = 2

	// BankTradeRatio is the default number of resources given for one from the bank
	BankTradeRatio int = 4
	// GenericHarborTradeRatio applies to any resource when a generic harbor is owned
	GenericHarborTradeRatio int = 3
	// ResourceHarborTradeRatio applies to the harbor's resource when that harbor is owned
	ResourceHarborTradeRatio int = 2

	// RoadBuildingStreets is the number of free streets granted by a road building card
	RoadBuildingStreets int = 2
	// YearOfPlentyResources is the number of resources picked with a year of plenty card
	YearOfPlentyResources int = 2

	// MaxTradeAmount caps a single entry of a player trade offer: 19 cards of each of the 5 resources
	MaxTradeAmount int = 95
)

const (
	// TileWidth is the corner-to-corner width of a flat-top hex tile
	TileWidth float64 = 20.0
	// TileHeight is the edge-to-edge height of a flat-top hex tile
	TileHeight float64 = 17.32051
	// BoardRadius is the number of rings around the center tile
	BoardRadius int = 2
	// HarborCount is the number of harbors placed on the coast
	HarborCount int = 9
	// GenericHarborCount is the number of 3:1 harbors among HarborCount
	GenericHarborCount int = 4
)
