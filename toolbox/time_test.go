package toolbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ygeth/adkProject/weather"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestGetCurrentTime_Paris(t *testing.T) {
	summer := NewTimeTool(weather.NewCatalog(), fixedClock(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)))
	for _, city := range []string{"Paris", "paris", "PARIS"} {
		r := summer.GetCurrentTime(city)
		require.True(t, r.OK(), city)
		assert.Equal(t, "The current time in "+city+" is 2025-07-01 12:00:00 CEST+0200", r.Report)
	}

	winter := NewTimeTool(weather.NewCatalog(), fixedClock(time.Date(2025, 1, 15, 23, 30, 5, 0, time.UTC)))
	assert.Equal(t, "The current time in Paris is 2025-01-16 00:30:05 CET+0100", winter.GetCurrentTime("Paris").Report)
}

func TestGetCurrentTime_UnknownCity(t *testing.T) {
	tt := NewTimeTool(weather.NewCatalog(), nil)
	r := tt.GetCurrentTime("Berlin")
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, "Sorry, I don't have timezone information for Berlin.", r.ErrorMessage)
	assert.Contains(t, r.ErrorMessage, "Berlin")
}

func TestGetCurrentTime_DefaultClock(t *testing.T) {
	r := NewTimeTool(weather.NewCatalog(), nil).GetCurrentTime("Paris")
	require.True(t, r.OK())
	assert.Regexp(t, `^The current time in Paris is \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} CES?T\+0[12]00$`, r.Report)
}

func TestGetCurrentTime_PaddedCityIsUnknown(t *testing.T) {
	tt := NewTimeTool(weather.NewCatalog(), nil)
	r := tt.GetCurrentTime(" Paris ")
	assert.Equal(t, StatusError, r.Status)
	assert.Equal(t, "Sorry, I don't have timezone information for  Paris .", r.ErrorMessage)
}
