package rating

// Tier is the human-facing rank derived from a rating value
type Tier struct {
	Name     string `json:"tier"`
	Division int    `json:"division"`
}

type tierBand struct {
	name string
	min  int
}

// Bands are ordered; a rating belongs to the last band whose floor it reaches.
var tierBands = []tierBand{
	{"Bronze", 0},
	{"Silver", 1000},
	{"Gold", 1500},
	{"Platinum", 2000},
	{"Diamond", 2500},
	{"Master", 3000},
}

// TierOf maps a rating value to its tier and 1-5 division
func TierOf(ratingValue int) Tier {
	if ratingValue < 0 {
		ratingValue = 0
	}

	band := tierBands[0]
	for _, candidate := range tierBands {
		if ratingValue >= candidate.min {
			band = candidate
		}
	}

	division := (ratingValue-band.min)/100%5 + 1
	if division > 5 {
		division = 5
	}

	return Tier{
		Name:     band.name,
		Division: division,
	}
}
