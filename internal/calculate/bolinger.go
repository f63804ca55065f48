package calculate

import (
	"math"

	"github.com/Alias1177/Recommender/models"
)

// Default Bollinger parameters
const (
	BandsPeriod = 20
	BandsWidth  = 2.0
)

// Bands calculates Bollinger bands using the population standard deviation.
// Either all three bands are available or none are.
func Bands(values []float64, period int, k float64) models.Bands {
	if period <= 0 || len(values) < period {
		return models.Bands{}
	}

	window := values[len(values)-period:]
	middle := average(window)

	var variance float64
	for _, v := range window {
		variance += math.Pow(v-middle, 2)
	}
	sd := math.Sqrt(variance / float64(period))

	return models.Bands{
		Upper:  models.Some(middle + sd*k),
		Middle: models.Some(middle),
		Lower:  models.Some(middle - sd*k),
	}
}
