package types

// DevelopmentCard is the kind of a development card.
type DevelopmentCard uint8

const (
	DevelopmentCardKnight DevelopmentCard = iota
	DevelopmentCardVictoryPoint
	DevelopmentCardRoadBuilding
	DevelopmentCardYearOfPlenty
	DevelopmentCardMonopoly
	DevelopmentCardHangedKnights
)

// NumDevelopmentCards is the number of development card kinds.
const NumDevelopmentCards = 6

var developmentCardNames = []string{"knight", "victoryPoint", "roadBuilding", "yearOfPlenty", "monopoly", "hangedKnights"}

func (c DevelopmentCard) Valid() bool {
	return int(c) < NumDevelopmentCards
}

func (c DevelopmentCard) String() string {
	return enumName(developmentCardNames, c)
}

func (c DevelopmentCard) MarshalText() ([]byte, error) {
	return marshalEnum(developmentCardNames, c)
}

func (c *DevelopmentCard) UnmarshalText(text []byte) error {
	return unmarshalEnum(developmentCardNames, text, c)
}
