package protocol

// Protocol ids
const (
	SpacePursuits      = "space-pursuits"
	MemoryMatrix       = "memory-matrix"
	EagleEye           = "eagle-eye"
	PeripheralDefender = "peripheral-defender"
	JungleJump         = "jungle-jump"
)

func definitions() []Definition {
	return []Definition{
		{
			ID:   SpacePursuits,
			Name: "Space Pursuits",
			Fields: []Field{
				{Name: "speed", Kind: KindNumber, Min: 1, Max: 20, Default: float64(5)},
				{Name: "size", Kind: KindNumber, Min: 0.5, Max: 10, Default: float64(5)},
				{Name: "contrast", Kind: KindNumber, Min: 10, Max: 100, Default: float64(100)},
				{Name: "backgroundColor", Kind: KindEnum, Values: []string{"black", "white", "green", "grey"}, Default: "black"},
				{Name: "dichopticEnabled", Kind: KindBool, Default: false},
				{Name: "colorCombination", Kind: KindEnum, Values: []string{"red-blue", "red-green", "none"}, Default: "none"},
				{Name: "asteroidCount", Kind: KindNumber, Min: 10, Max: 100, Default: float64(40)},
			},
		},
		{
			ID:   MemoryMatrix,
			Name: "Memory Matrix",
			Fields: []Field{
				{Name: "gridSize", Kind: KindNumber, Min: 3, Max: 10, Default: float64(4)},
				{Name: "numberOfTiles", Kind: KindNumber, Min: 3, Max: 20, Default: float64(5)},
				{Name: "displayTime", Kind: KindNumber, Min: 0.5, Max: 10, Default: float64(2)},
				{Name: "distractionTiles", Kind: KindBool, Default: false},
				{Name: "reverseRecall", Kind: KindBool, Default: false},
			},
		},
		{
			ID:   EagleEye,
			Name: "Eagle Eye",
			Fields: []Field{
				{Name: "targetType", Kind: KindEnum, Values: []string{"letter", "number", "shape", "gabor"}, Default: "letter"},
				{Name: "fieldDensity", Kind: KindEnum, Values: []string{"low", "medium", "high"}, Default: "medium"},
				{Name: "targetSize", Kind: KindNumber, Min: 1, Max: 10, Default: float64(5)},
				{Name: "contrast", Kind: KindNumber, Min: 10, Max: 100, Default: float64(100)},
				{Name: "timeLimit", Kind: KindNumber, Min: 10, Max: 300, Default: float64(60)},
				{Name: "flashMode", Kind: KindBool, Default: false},
			},
		},
		{
			ID:   PeripheralDefender,
			Name: "Peripheral Defender",
			Fields: []Field{
				{Name: "centralTaskEnabled", Kind: KindBool, Default: true},
				{Name: "centralTaskDifficulty", Kind: KindEnum, Values: []string{"easy", "hard"}, Default: "easy"},
				{Name: "stimulusSize", Kind: KindNumber, Min: 1, Max: 10, Default: float64(5)},
				{Name: "fieldOfView", Kind: KindNumber, Min: 10, Max: 100, Default: float64(40)},
				{Name: "speed", Kind: KindNumber, Min: 1, Max: 10, Default: float64(5)},
				{Name: "quadrantRestriction", Kind: KindEnum, Values: []string{"none", "left", "right", "upper", "lower"}, Default: "none"},
			},
		},
		{
			ID:   JungleJump,
			Name: "Jungle Jump",
			Fields: []Field{
				{Name: "gameSpeed", Kind: KindNumber, Min: 1, Max: 10, Default: float64(5)},
				{Name: "gravity", Kind: KindEnum, Values: []string{"low", "normal", "high"}, Default: "normal"},
				{Name: "obstacleFrequency", Kind: KindEnum, Values: []string{"low", "medium", "high"}, Default: "medium"},
				{Name: "gapSize", Kind: KindEnum, Values: []string{"wide", "narrow", "random"}, Default: "wide"},
				{Name: "highContrastMode", Kind: KindBool, Default: false},
			},
		},
	}
}
