package toolbox

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/weather"
)

var celsiusPattern = regexp.MustCompile(`(-?\d+)°C`)

func newSession(state map[string]any) *core.Session {
	return core.NewSession(core.SessionKey{AppName: "app", UserID: "u", SessionID: "s"}, state)
}

func TestGetWeather_KnownCities(t *testing.T) {
	w := NewWeatherTools(weather.NewCatalog())

	r := w.GetWeather("New York")
	require.True(t, r.OK())
	assert.Equal(t, "The weather in New York is sunny with a temperature of 25°C.", r.Report)
	assert.Empty(t, r.ErrorMessage)

	r = w.GetWeather("LoNDon")
	assert.Equal(t, "It's cloudy in London with a temperature of 15°C.", r.Report)
}

func TestGetWeather_UnknownCityNamesInput(t *testing.T) {
	w := NewWeatherTools(weather.NewCatalog())
	for _, city := range []string{"Paris", "paris", " PARIS ", "Rio de Janeiro"} {
		r := w.GetWeather(city)
		assert.Equal(t, StatusError, r.Status, city)
		assert.Equal(t, "Sorry, I don't have weather information for '"+city+"'.", r.ErrorMessage)
		assert.Empty(t, r.Report)
	}
}

func TestGetWeatherStateful_UnknownCityLeavesStateUntouched(t *testing.T) {
	w := NewWeatherTools(weather.NewCatalog())
	for _, city := range []string{"Paris", "paris", " PARIS ", "Rio de Janeiro", "Atlantis"} {
		for _, unit := range []string{UnitCelsius, UnitFahrenheit} {
			sess := newSession(map[string]any{KeyTemperatureUnit: unit, KeyLastCityChecked: "Tokyo"})
			before := sess.StateSnapshot()

			r := w.GetWeatherStateful(sess, city)
			assert.Equal(t, StatusError, r.Status, city)
			assert.Equal(t, "Sorry, I don't have weather information for '"+city+"'.", r.ErrorMessage)
			assert.Empty(t, r.Report)
			assert.Equal(t, before, sess.StateSnapshot(), "%q must not mutate state", city)
		}
	}
}

func TestGetWeatherStateful_CelsiusMatchesPlainReport(t *testing.T) {
	catalog := weather.NewCatalog()
	w := NewWeatherTools(catalog)

	for _, city := range catalog.Cities() {
		for _, state := range []map[string]any{nil, {KeyTemperatureUnit: UnitCelsius}} {
			plain := w.GetWeather(city)
			stateful := w.GetWeatherStateful(newSession(state), city)
			require.True(t, stateful.OK(), city)

			want := celsiusPattern.FindStringSubmatch(plain.Report)
			got := celsiusPattern.FindStringSubmatch(stateful.Report)
			require.Len(t, want, 2, plain.Report)
			require.Len(t, got, 2, stateful.Report)
			assert.Equal(t, want[1], got[1], city)
		}
	}
}

func TestGetWeatherStateful_Fahrenheit(t *testing.T) {
	catalog := weather.NewCatalog()
	w := NewWeatherTools(catalog)

	for _, city := range catalog.Cities() {
		reading, _ := catalog.Reading(city)
		sess := newSession(map[string]any{KeyTemperatureUnit: UnitFahrenheit})

		r := w.GetWeatherStateful(sess, city)
		require.True(t, r.OK())
		want := strconv.Itoa(RoundHalfToEven(reading.Celsius*9/5+32)) + "°F"
		assert.Contains(t, r.Report, want)
	}

	sess := newSession(map[string]any{KeyTemperatureUnit: UnitFahrenheit})
	assert.Equal(t, "The weather in Tokyo is light rain with a temperature of 64°F.", w.GetWeatherStateful(sess, "tokyo").Report)
	assert.Equal(t, "The weather in New york is sunny with a temperature of 77°F.", w.GetWeatherStateful(sess, "New York").Report)
}

func TestGetWeatherStateful_RecordsLastCity(t *testing.T) {
	w := NewWeatherTools(weather.NewCatalog())
	sess := newSession(map[string]any{KeyTemperatureUnit: UnitCelsius})

	r := w.GetWeatherStateful(sess, "London")
	require.True(t, r.OK())
	assert.Equal(t, "The weather in London is cloudy with a temperature of 15°C.", r.Report)

	v, ok := sess.GetState(KeyLastCityChecked)
	require.True(t, ok)
	assert.Equal(t, "London", v)

	before := sess.StateSnapshot()
	miss := w.GetWeatherStateful(sess, "Atlantis")
	assert.Equal(t, "Sorry, I don't have weather information for 'Atlantis'.", miss.ErrorMessage)
	assert.Equal(t, before, sess.StateSnapshot(), "a miss must not mutate state")
}

func TestGetWeatherStateful_MutationVisibleToNextCall(t *testing.T) {
	w := NewWeatherTools(weather.NewCatalog())
	sess := newSession(nil)

	assert.Contains(t, w.GetWeatherStateful(sess, "London").Report, "15°C")
	sess.SetState(KeyTemperatureUnit, UnitFahrenheit)
	assert.Contains(t, w.GetWeatherStateful(sess, "London").Report, "59°F")
}

func TestPreferredUnit(t *testing.T) {
	assert.Equal(t, UnitCelsius, PreferredUnit(nil))
	assert.Equal(t, UnitCelsius, PreferredUnit(newSession(nil)))
	assert.Equal(t, UnitCelsius, PreferredUnit(newSession(map[string]any{KeyTemperatureUnit: "Kelvin"})))
	assert.Equal(t, UnitFahrenheit, PreferredUnit(newSession(map[string]any{KeyTemperatureUnit: UnitFahrenheit})))
}

func TestRoundHalfToEven(t *testing.T) {
	assert.Equal(t, 64, RoundHalfToEven(64.5))
	assert.Equal(t, 66, RoundHalfToEven(65.5))
	assert.Equal(t, 64, RoundHalfToEven(64.4))
	assert.Equal(t, 65, RoundHalfToEven(64.6))
	assert.Equal(t, -2, RoundHalfToEven(-2.5))
	assert.InDelta(t, 59.0, CelsiusToFahrenheit(15), 1e-9)
}
