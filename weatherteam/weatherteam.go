// Package weatherteam declares the weather agents: the single v1 agent,
// the v2 team that delegates greetings and farewells, and the v4 team whose
// weather tool honours the stored temperature unit and whose answers are
// saved under an output key.
package weatherteam

import (
	"strings"
	"time"

	"github.com/Ygeth/adkProject/agent"
	"github.com/Ygeth/adkProject/logging"
	"github.com/Ygeth/adkProject/tool"
	"github.com/Ygeth/adkProject/toolbox"
	"github.com/Ygeth/adkProject/weather"
)

// Agent names.
const (
	WeatherAgentV1         = "weather_agent_v1"
	WeatherAgentV2         = "weather_agent_v2"
	WeatherAgentV4Stateful = "weather_agent_v4_stateful"
	GreetingAgent          = "greeting_agent"
	FarewellAgent          = "farewell_agent"
)

// LastWeatherReportKey is the state key the stateful root agent saves its
// final answer under.
const LastWeatherReportKey = toolbox.KeyLastReport

// Models names the model identifiers of the team.
type Models struct {
	Agent string // greeting, farewell and v1 agents
	Root  string // v2 and v4 root agents
}

// Team holds the tools shared by every agent generation.
type Team struct {
	models  Models
	weather *toolbox.WeatherTools
	time    *toolbox.TimeTool
}

// New builds a Team over catalog. A nil clock means time.Now.
func New(models Models, catalog *weather.Catalog, clock func() time.Time, logger logging.Logger) *Team {
	return &Team{
		models:  models,
		weather: toolbox.NewWeatherTools(catalog, toolbox.WithLogger(logger)),
		time:    toolbox.NewTimeTool(catalog, clock, toolbox.WithLogger(logger)),
	}
}

func (t *Team) knownCities() string {
	return strings.Join(t.weather.Catalog().Cities(), ", ")
}

// Greeting describes the greeting sub-agent.
func (t *Team) Greeting() agent.Descriptor {
	return agent.Descriptor{
		Name:        GreetingAgent,
		Model:       t.models.Agent,
		Instruction: "You are the Greeting Agent. Your ONLY task is to provide a friendly greeting using the 'say_hello' tool. Do nothing else.",
		Description: "Handles simple greetings and hellos using the 'say_hello' tool.",
		Tools:       []tool.Tool{toolbox.HelloTool()},
	}
}

// Farewell describes the farewell sub-agent.
func (t *Team) Farewell() agent.Descriptor {
	return agent.Descriptor{
		Name:        FarewellAgent,
		Model:       t.models.Agent,
		Instruction: "You are the Farewell Agent. Your ONLY task is to provide a polite goodbye message using the 'say_goodbye' tool. Do not perform any other actions.",
		Description: "Handles simple farewells and goodbyes using the 'say_goodbye' tool.",
		Tools:       []tool.Tool{toolbox.GoodbyeTool()},
	}
}

// V1 describes the single weather agent with the plain weather and time
// tools.
func (t *Team) V1() agent.Descriptor {
	return agent.Descriptor{
		Name:        WeatherAgentV1,
		Model:       t.models.Agent,
		Description: "Provides weather information for specific cities.",
		Instruction: "You are a helpful weather assistant. " +
			"When the user asks for the weather in a specific city, " +
			"use the 'get_weather' tool to find the information. " +
			"When the user asks for the time in a city, use the 'get_current_time' tool. " +
			"If the tool returns an error, inform the user politely. " +
			"If the tool is successful, present the weather report clearly. " +
			"If the user asks for a city you don't know, tell them: cities you know are: " + t.knownCities(),
		Tools: []tool.Tool{t.weather.WeatherTool(), t.time.Tool()},
	}
}

// V2 describes the weather team root delegating to greeting and farewell
// agents.
func (t *Team) V2() agent.Descriptor {
	return agent.Descriptor{
		Name:        WeatherAgentV2,
		Model:       t.models.Root,
		Description: "The main coordinator agent. Handles weather requests and delegates greeting/farewell to specialist.",
		Instruction: "You are the main Weather Agent coordinating a team. Your primary responsibility is to provide weather information. " +
			"Use the 'get_weather' tool ONLY for specific weather requests (e.g., 'weather in London'). " +
			"You have specialized sub-agents: " +
			"1. 'greeting_agent': Handles simple greetings like 'Hi', 'Hello'. Delegate to it for these. " +
			"2. 'farewell_agent': Handles simple farewells like 'Bye', 'See you'. Delegate to it for these. " +
			"Analyze the user's query. If it's a greeting, delegate to 'greeting_agent'. If it's a farewell, delegate to 'farewell_agent'. " +
			"If it's a weather request, handle it yourself using 'get_weather'. " +
			"For anything else, respond appropriately or state you cannot handle it. " +
			"If the user asks for a city you don't know, tell them: cities you know are: " + t.knownCities(),
		Tools:     []tool.Tool{t.weather.WeatherTool()},
		SubAgents: []agent.Descriptor{t.Greeting(), t.Farewell()},
	}
}

// V4Stateful describes the state-aware team root. It may change the unit
// preference through the state manager tool, restricted to that one key, and
// its final answers are saved under LastWeatherReportKey.
func (t *Team) V4Stateful() agent.Descriptor {
	return agent.Descriptor{
		Name:        WeatherAgentV4Stateful,
		Model:       t.models.Root,
		Description: "Main agent: Provides weather (state-aware unit), delegates greetings/farewells, saves report to state.",
		Instruction: "You are the main Weather Agent. Your job is to provide weather using 'get_weather_stateful'. " +
			"The tool will format the temperature based on user preference stored in state. " +
			"Delegate simple greetings to 'greeting_agent' and farewells to 'farewell_agent'. " +
			"If the user asks to switch between Celsius and Fahrenheit, store the choice with 'state_manager' " +
			"(operation 'set_state', key '" + toolbox.KeyTemperatureUnit + "', value 'Celsius' or 'Fahrenheit'). " +
			"Handle only weather requests, greetings, and farewells. " +
			"If the user asks for a city you don't know, tell them: cities you know are: " + t.knownCities(),
		Tools: []tool.Tool{
			t.weather.StatefulWeatherTool(),
			tool.NewStateManagerTool(toolbox.KeyTemperatureUnit),
		},
		SubAgents: []agent.Descriptor{t.Greeting(), t.Farewell()},
		OutputKey: LastWeatherReportKey,
	}
}
