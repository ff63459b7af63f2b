package types

// BuildType is something a player can pay for.
type BuildType uint8

const (
	BuildTypeStreet BuildType = iota
	BuildTypeSettlement
	BuildTypeCity
	BuildTypeDevelopmentCard
)

var buildTypeNames = []string{"street", "settlement", "city", "developmentCard"}

func (b BuildType) String() string {
	return enumName(buildTypeNames, b)
}

func (b BuildType) MarshalText() ([]byte, error) {
	return marshalEnum(buildTypeNames, b)
}

func (b *BuildType) UnmarshalText(text []byte) error {
	return unmarshalEnum(buildTypeNames, text, b)
}

var buildCosts = map[BuildType][]ResourceAmount{
	BuildTypeStreet: {
		{Resource: ResourceWood, Amount: 1},
		{Resource: ResourceBrick, Amount: 1},
	},
	BuildTypeSettlement: {
		{Resource: ResourceWood, Amount: 1},
		{Resource: ResourceBrick, Amount: 1},
		{Resource: ResourceSheep, Amount: 1},
		{Resource: ResourceWheat, Amount: 1},
	},
	BuildTypeCity: {
		{Resource: ResourceWheat, Amount: 2},
		{Resource: ResourceOre, Amount: 3},
	},
	BuildTypeDevelopmentCard: {
		{Resource: ResourceSheep, Amount: 1},
		{Resource: ResourceWheat, Amount: 1},
		{Resource: ResourceOre, Amount: 1},
	},
}

// Cost returns a copy of the standard resource cost of a build type.
func Cost(b BuildType) []ResourceAmount {
	cost := buildCosts[b]
	out := make([]ResourceAmount, len(cost))
	copy(out, cost)
	return out
}
