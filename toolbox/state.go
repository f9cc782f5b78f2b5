package toolbox

// Session state keys used by the tools.
const (
	KeyTemperatureUnit = "user_preference_temperature_unit"
	KeyLastCityChecked = "last_city_checked_stateful"
	KeyLastReport      = "last_weather_report"
)

// Temperature units accepted under KeyTemperatureUnit.
const (
	UnitCelsius    = "Celsius"
	UnitFahrenheit = "Fahrenheit"
)

// State is the session state handle a tool reads and writes. Both
// *core.ToolContext and *core.Session satisfy it.
type State interface {
	GetState(key string) (any, bool)
	SetState(key string, value any)
}

// PreferredUnit returns the unit stored in state, defaulting to Celsius.
func PreferredUnit(state State) string {
	if state == nil {
		return UnitCelsius
	}
	v, ok := state.GetState(KeyTemperatureUnit)
	if !ok {
		return UnitCelsius
	}
	if s, ok := v.(string); ok && s == UnitFahrenheit {
		return UnitFahrenheit
	}
	return UnitCelsius
}
