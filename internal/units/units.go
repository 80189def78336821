// Package units maps archive unit-system codes and observation types to the
// standard units stored values are expressed in.
package units

import "github.com/cmatteri/wxplot/internal/plot"

// Archive unit-system codes.
const (
	US       = 0x01
	Metric   = 0x10
	MetricWX = 0x11
)

// obsGroups maps an observation column to its physical unit group. It also
// serves as the allowlist of queryable columns: an observation missing here is
// never interpolated into SQL.
var obsGroups = map[string]string{
	"dateTime":    "group_time",
	"interval":    "group_interval",
	"usUnits":     "group_count",
	"barometer":   "group_pressure",
	"pressure":    "group_pressure",
	"altimeter":   "group_pressure",
	"inTemp":      "group_temperature",
	"outTemp":     "group_temperature",
	"dewpoint":    "group_temperature",
	"heatindex":   "group_temperature",
	"windchill":   "group_temperature",
	"inHumidity":  "group_percent",
	"outHumidity": "group_percent",
	"windSpeed":   "group_speed",
	"windGust":    "group_speed",
	"windDir":     "group_direction",
	"windGustDir": "group_direction",
	"rain":        "group_rain",
	"rainRate":    "group_rainrate",
	"ET":          "group_rain",
	"radiation":   "group_radiation",
	"UV":          "group_uv",
	"cloudbase":   "group_altitude",
	"windrun":     "group_distance",
}

// aggGroups overrides the observation's group for aggregates whose result is
// not in the observation's own unit.
var aggGroups = map[plot.AggregateType]string{
	plot.AggCount: "group_count",
}

// systemUnits maps unit group to standard unit, per unit system.
var systemUnits = map[int]map[string]string{
	US: {
		"group_time":        "unix_epoch",
		"group_interval":    "minute",
		"group_count":       "count",
		"group_pressure":    "inHg",
		"group_temperature": "degree_F",
		"group_percent":     "percent",
		"group_speed":       "mile_per_hour",
		"group_direction":   "degree_compass",
		"group_rain":        "inch",
		"group_rainrate":    "inch_per_hour",
		"group_radiation":   "watt_per_meter_squared",
		"group_uv":          "uv_index",
		"group_altitude":    "foot",
		"group_distance":    "mile",
	},
	Metric: {
		"group_time":        "unix_epoch",
		"group_interval":    "minute",
		"group_count":       "count",
		"group_pressure":    "mbar",
		"group_temperature": "degree_C",
		"group_percent":     "percent",
		"group_speed":       "km_per_hour",
		"group_direction":   "degree_compass",
		"group_rain":        "cm",
		"group_rainrate":    "cm_per_hour",
		"group_radiation":   "watt_per_meter_squared",
		"group_uv":          "uv_index",
		"group_altitude":    "meter",
		"group_distance":    "km",
	},
	MetricWX: {
		"group_time":        "unix_epoch",
		"group_interval":    "minute",
		"group_count":       "count",
		"group_pressure":    "mbar",
		"group_temperature": "degree_C",
		"group_percent":     "percent",
		"group_speed":       "meter_per_second",
		"group_direction":   "degree_compass",
		"group_rain":        "mm",
		"group_rainrate":    "mm_per_hour",
		"group_radiation":   "watt_per_meter_squared",
		"group_uv":          "uv_index",
		"group_altitude":    "meter",
		"group_distance":    "km",
	},
}

// Resolver implements plot.UnitResolver over the static weewx-style tables.
type Resolver struct{}

// StandardUnit returns the unit type and group for obsType under the given
// unit system, accounting for aggregate overrides. Unknown systems or
// observations yield empty strings.
func (Resolver) StandardUnit(system int, obsType string, agg plot.AggregateType) (string, string) {
	group, ok := obsGroups[obsType]
	if !ok {
		return "", ""
	}
	if g, ok := aggGroups[agg]; ok {
		group = g
	}

	unit, ok := systemUnits[system][group]
	if !ok {
		return "", group
	}
	return unit, group
}

// KnownObservation reports whether obs is a queryable archive column.
func KnownObservation(obs string) bool {
	_, ok := obsGroups[obs]
	return ok
}
