package toolbox

import (
	"fmt"
	"math"

	"github.com/Ygeth/adkProject/internal/util"
	"github.com/Ygeth/adkProject/logging"
	"github.com/Ygeth/adkProject/weather"
)

// WeatherTools answers weather questions from a weather.Catalog.
type WeatherTools struct {
	catalog *weather.Catalog
	logger  logging.Logger
}

// NewWeatherTools constructs weather tools over catalog.
func NewWeatherTools(catalog *weather.Catalog, optFns ...func(o *Options)) *WeatherTools {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &WeatherTools{catalog: catalog, logger: opts.Logger}
}

// Catalog returns the backing data set.
func (w *WeatherTools) Catalog() *weather.Catalog { return w.catalog }

// GetWeather returns the pre-formatted report for city.
func (w *WeatherTools) GetWeather(city string) Result {
	w.logger.Debug("toolbox.weather.lookup", "city", city)

	report, ok := w.catalog.Report(city)
	if !ok {
		return Failure(unknownCity(city))
	}
	return Success(report)
}

// GetWeatherStateful renders the reading for city in the unit preferred in
// state and records the city under KeyLastCityChecked. Unknown cities leave
// state untouched.
func (w *WeatherTools) GetWeatherStateful(state State, city string) Result {
	unit := PreferredUnit(state)
	w.logger.Debug("toolbox.weather.lookup", "city", city, "unit", unit, "stateful", true)

	reading, ok := w.catalog.Reading(city)
	if !ok {
		w.logger.Debug("toolbox.weather.unknown_city", "city", city)
		return Failure(unknownCity(city))
	}

	value, symbol := reading.Celsius, "°C"
	if unit == UnitFahrenheit {
		value, symbol = CelsiusToFahrenheit(reading.Celsius), "°F"
	}

	report := fmt.Sprintf("The weather in %s is %s with a temperature of %d%s.",
		util.Capitalize(city), reading.Condition, RoundHalfToEven(value), symbol)

	if state != nil {
		state.SetState(KeyLastCityChecked, city)
	}

	return Success(report)
}

// CelsiusToFahrenheit converts c to Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// RoundHalfToEven renders v with zero decimals, sending ties to the even
// neighbour (64.5 renders as 64).
func RoundHalfToEven(v float64) int {
	return int(math.RoundToEven(v))
}

func unknownCity(city string) string {
	return fmt.Sprintf("Sorry, I don't have weather information for '%s'.", city)
}
