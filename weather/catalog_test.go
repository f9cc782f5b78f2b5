package weather

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "newyork", Normalize("New York"))
	assert.Equal(t, "newyork", Normalize(" NEW  york "))
	assert.Equal(t, "", Normalize(""))
}

func TestCatalog_Lookups(t *testing.T) {
	c := NewCatalog()

	r, ok := c.Report("new york")
	require.True(t, ok)
	assert.Equal(t, "The weather in New York is sunny with a temperature of 25°C.", r)

	reading, ok := c.Reading("LONDON")
	require.True(t, ok)
	assert.Equal(t, 15.0, reading.Celsius)
	assert.Equal(t, "cloudy", reading.Condition)

	_, ok = c.Reading("Paris")
	assert.False(t, ok)

	tz, ok := c.Timezone("pArIs")
	require.True(t, ok)
	assert.Equal(t, "Europe/Paris", tz)

	_, ok = c.Timezone("Berlin")
	assert.False(t, ok)

	for _, city := range []string{" Paris ", "Paris ", "\tparis"} {
		_, ok = c.Timezone(city)
		assert.False(t, ok, "%q: surrounding whitespace is not ignored", city)
	}
}

func TestCatalog_CitiesMatchReports(t *testing.T) {
	c := NewCatalog()
	assert.Equal(t, []string{"london", "newyork", "tokyo"}, c.Cities())
	for _, city := range c.Cities() {
		_, ok := c.Report(city)
		assert.True(t, ok, city)
	}
}
