// Package weather generates per-turn mission conditions: time of day,
// start time and weather drawn from the season.
package weather

import (
	"fmt"
	"math/rand"
	"time"
)

// TimeOfDay is the phase a turn is flown in. Turns cycle through the four
// phases in order.
type TimeOfDay int

const (
	Dawn  TimeOfDay = iota
	Day
	Dusk
	Night
)

var timeOfDayNames = [...]string{"dawn", "day", "dusk", "night"}

func (t TimeOfDay) String() string {
	if t < Dawn || t > Night {
		return fmt.Sprintf("TimeOfDay(%d)", int(t))
	}
	return timeOfDayNames[t]
}

// MarshalText encodes the phase by name.
func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a phase name.
func (t *TimeOfDay) UnmarshalText(b []byte) error {
	for i, name := range timeOfDayNames {
		if name == string(b) {
			*t = TimeOfDay(i)
			return nil
		}
	}
	return fmt.Errorf("unknown time of day %q", b)
}

// ForTurn returns the phase for a turn number.
func ForTurn(turn int) TimeOfDay {
	return TimeOfDay(turn % 4)
}

// DayOffset returns how many calendar days have passed by a turn.
func DayOffset(turn int) int {
	return turn / 4
}

// Season of the year, indexed like the seasonDefault descriptions.
type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

// SeasonOf maps a calendar date to a northern hemisphere season.
func SeasonOf(date time.Time) Season {
	switch date.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Autumn
	default:
		return Winter
	}
}

// Kind is the broad weather type of a turn.
type Kind string

const (
	Clear        Kind = "clear"
	Cloudy       Kind = "cloudy"
	Rain         Kind = "rain"
	Thunderstorm Kind = "thunderstorm"
	Snow         Kind = "snow"
)

// Weather holds the simulated weather of a turn.
type Weather struct {
	Kind        Kind    `json:"kind"`
	Temp        float64 `json:"temp"`       // Celsius
	WindSpeed   float64 `json:"wind_speed"` // m/s
	WindFrom    float64 `json:"wind_from"`  // Degrees
	CloudBase   float64 `json:"cloud_base"` // Meters, 0 when clear
	Description string  `json:"description"`
}

// Conditions are everything the mission generator needs to set the scene.
type Conditions struct {
	TimeOfDay TimeOfDay `json:"time_of_day"`
	StartTime time.Time `json:"start_time"`
	Weather   Weather   `json:"weather"`
}

// Start hour ranges per phase, [from, to).
var startHours = map[TimeOfDay][2]int{
	Dawn:  {5, 8},
	Day:   {8, 16},
	Dusk:  {16, 18},
	Night: {0, 5},
}

// Generate draws the conditions for a turn on a given calendar day.
func Generate(rng *rand.Rand, day time.Time, tod TimeOfDay) Conditions {
	hours := startHours[tod]
	hour := hours[0] + rng.Intn(hours[1]-hours[0])
	start := time.Date(day.Year(), day.Month(), day.Day(), hour, rng.Intn(60), 0, 0, time.UTC)
	return Conditions{
		TimeOfDay: tod,
		StartTime: start,
		Weather:   generateWeather(rng, SeasonOf(day)),
	}
}

// Per-season chance of clear, cloudy, rain and storm; the remainder is
// snow.
var seasonOdds = map[Season][4]float64{
	Spring: {0.45, 0.30, 0.20, 0.05},
	Summer: {0.60, 0.20, 0.10, 0.10},
	Autumn: {0.35, 0.35, 0.25, 0.05},
	Winter: {0.30, 0.35, 0.10, 0.00},
}

var seasonTemps = map[Season][2]float64{
	Spring: {8, 20},
	Summer: {18, 34},
	Autumn: {6, 18},
	Winter: {-8, 6},
}

func generateWeather(rng *rand.Rand, season Season) Weather {
	odds := seasonOdds[season]
	roll := rng.Float64()
	kind := Snow
	for i, k := range []Kind{Clear, Cloudy, Rain, Thunderstorm} {
		if roll < odds[i] {
			kind = k
			break
		}
		roll -= odds[i]
	}

	temps := seasonTemps[season]
	w := Weather{
		Kind:     kind,
		Temp:     temps[0] + rng.Float64()*(temps[1]-temps[0]),
		WindFrom: float64(rng.Intn(360)),
	}
	if kind == Snow && w.Temp > 1 {
		// Snow above freezing falls as rain.
		w.Kind = Rain
	}

	switch w.Kind {
	case Clear:
		w.WindSpeed = rng.Float64() * 5
	case Cloudy:
		w.WindSpeed = 2 + rng.Float64()*6
		w.CloudBase = 1500 + float64(rng.Intn(3000))
	case Rain, Snow:
		w.WindSpeed = 4 + rng.Float64()*8
		w.CloudBase = 600 + float64(rng.Intn(1200))
	case Thunderstorm:
		w.WindSpeed = 12 + rng.Float64()*10
		w.CloudBase = 400 + float64(rng.Intn(800))
	}
	w.Description = describe(w, season)
	return w
}

func describe(w Weather, season Season) string {
	switch w.Kind {
	case Clear:
		return seasonDefault(season)
	case Cloudy:
		return "overcast"
	case Rain:
		return "rain showers"
	case Snow:
		return "snowfall"
	default:
		return "thunderstorms"
	}
}

func seasonDefault(season Season) string {
	switch season {
	case Spring:
		return "mild spring weather"
	case Summer:
		return "warm summer sun"
	case Autumn:
		return "cool autumn breeze"
	case Winter:
		return "cold winter chill"
	default:
		return "fair weather"
	}
}

// IsStorm reports whether the weather grounds light aircraft.
func (w Weather) IsStorm() bool {
	return w.Kind == Thunderstorm || w.WindSpeed > 15
}
