// Package weather holds the mock data behind the weather and time tools:
// pre-formatted reports, canonical Celsius readings and city timezones.
// Tables are plain values built by NewCatalog and injected into tools.
package weather

import (
	"sort"
	"strings"
)

// Reading is a canonical weather fact for one city.
type Reading struct {
	City      string  // normalized key
	Celsius   float64 // canonical temperature
	Condition string
}

// Catalog is an immutable set of lookup tables keyed by normalized city name.
type Catalog struct {
	reports   map[string]string
	readings  map[string]Reading
	timezones map[string]string
}

// NewCatalog returns the built-in mock data set.
func NewCatalog() *Catalog {
	return &Catalog{
		reports: map[string]string{
			"newyork": "The weather in New York is sunny with a temperature of 25°C.",
			"london":  "It's cloudy in London with a temperature of 15°C.",
			"tokyo":   "Tokyo is experiencing light rain and a temperature of 18°C.",
		},
		readings: map[string]Reading{
			"newyork": {City: "newyork", Celsius: 25, Condition: "sunny"},
			"london":  {City: "london", Celsius: 15, Condition: "cloudy"},
			"tokyo":   {City: "tokyo", Celsius: 18, Condition: "light rain"},
		},
		timezones: map[string]string{
			"paris": "Europe/Paris",
		},
	}
}

// Normalize lowercases city and strips spaces: "New York" -> "newyork".
func Normalize(city string) string {
	return strings.ReplaceAll(strings.ToLower(city), " ", "")
}

// Report returns the pre-formatted report for city.
func (c *Catalog) Report(city string) (string, bool) {
	r, ok := c.reports[Normalize(city)]
	return r, ok
}

// Reading returns the canonical reading for city.
func (c *Catalog) Reading(city string) (Reading, bool) {
	r, ok := c.readings[Normalize(city)]
	return r, ok
}

// Timezone returns the IANA zone name for city. Only case is ignored.
func (c *Catalog) Timezone(city string) (string, bool) {
	tz, ok := c.timezones[strings.ToLower(city)]
	return tz, ok
}

// Cities lists the normalized keys that have a weather reading, sorted.
func (c *Catalog) Cities() []string {
	cities := make([]string, 0, len(c.readings))
	for k := range c.readings {
		cities = append(cities, k)
	}
	sort.Strings(cities)
	return cities
}
