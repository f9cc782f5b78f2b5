package toolbox

import (
	"github.com/Ygeth/adkProject/core"
	"github.com/Ygeth/adkProject/tool"
)

// Tool names as seen by the model.
const (
	GetWeatherName         = "get_weather"
	GetWeatherStatefulName = "get_weather_stateful"
	GetCurrentTimeName     = "get_current_time"
	SayHelloName           = "say_hello"
	SayGoodbyeName         = "say_goodbye"
)

// CityArgs is the argument object of the city lookup tools.
type CityArgs struct {
	City string `json:"city" description:"The name of the city (e.g. \"New York\", \"London\", \"Tokyo\")."`
}

// NameArgs is the argument object of the greeting tools.
type NameArgs struct {
	Name *string `json:"name" description:"The name of the person. Optional."`
}

// WeatherTool exposes GetWeather to agents.
func (w *WeatherTools) WeatherTool() tool.Tool {
	return tool.NewTypedTool(GetWeatherName,
		"Retrieves the current weather report for a specified city. "+
			"Returns a status of 'success' with a 'report', or 'error' with an 'error_message'.",
		func(_ *core.ToolContext, a CityArgs) (any, error) {
			return w.GetWeather(a.City), nil
		})
}

// StatefulWeatherTool exposes GetWeatherStateful to agents; the tool
// context is the state handle.
func (w *WeatherTools) StatefulWeatherTool() tool.Tool {
	return tool.NewTypedTool(GetWeatherStatefulName,
		"Retrieves the current weather for a city, formatting the temperature in the user's preferred unit stored in session state.",
		func(tc *core.ToolContext, a CityArgs) (any, error) {
			return w.GetWeatherStateful(tc, a.City), nil
		})
}

// Tool exposes GetCurrentTime to agents.
func (t *TimeTool) Tool() tool.Tool {
	return tool.NewTypedTool(GetCurrentTimeName,
		"Gets the current time for a given city.",
		func(_ *core.ToolContext, a CityArgs) (any, error) {
			return t.GetCurrentTime(a.City), nil
		})
}

// HelloTool exposes SayHello to agents.
func HelloTool() tool.Tool {
	return tool.NewTypedTool(SayHelloName,
		"Returns a greeting message. If a name is provided, it personalizes the greeting.",
		func(_ *core.ToolContext, a NameArgs) (any, error) {
			return SayHello(a.Name), nil
		})
}

// GoodbyeTool exposes SayGoodbye to agents.
func GoodbyeTool() tool.Tool {
	return tool.NewTypedTool(SayGoodbyeName,
		"Returns a farewell message. If a name is provided, it personalizes the farewell.",
		func(_ *core.ToolContext, a NameArgs) (any, error) {
			return SayGoodbye(a.Name), nil
		})
}
