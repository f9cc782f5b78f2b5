package toolbox

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone data for hosts without a system database

	"github.com/Ygeth/adkProject/logging"
	"github.com/Ygeth/adkProject/weather"
)

const reportTimeLayout = "2006-01-02 15:04:05 MST-0700"

// TimeTool reports the local time of cities with a known timezone.
type TimeTool struct {
	catalog *weather.Catalog
	now     func() time.Time
	logger  logging.Logger
}

// NewTimeTool constructs a TimeTool. A nil clock means time.Now.
func NewTimeTool(catalog *weather.Catalog, clock func() time.Time, optFns ...func(o *Options)) *TimeTool {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if clock == nil {
		clock = time.Now
	}
	return &TimeTool{catalog: catalog, now: clock, logger: opts.Logger}
}

// GetCurrentTime returns the current time in city as
// "YYYY-MM-DD HH:MM:SS <zone><offset>".
func (t *TimeTool) GetCurrentTime(city string) Result {
	t.logger.Debug("toolbox.time.lookup", "city", city)

	tzName, ok := t.catalog.Timezone(city)
	if !ok {
		return Failure(fmt.Sprintf("Sorry, I don't have timezone information for %s.", city))
	}

	loc, err := time.LoadLocation(tzName)
	if err != nil {
		t.logger.Error("toolbox.time.zone_load_failed", "zone", tzName, "error", err.Error())
		return Failure(fmt.Sprintf("Sorry, I don't have timezone information for %s.", city))
	}

	now := t.now().In(loc)
	return Success(fmt.Sprintf("The current time in %s is %s", city, now.Format(reportTimeLayout)))
}
