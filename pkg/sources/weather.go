package sources

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// weatherFetcher implements Fetcher for Open-Meteo style current-conditions endpoints.
// It always yields exactly one record describing the current conditions.
type weatherFetcher struct {
	client HTTPClient
	creds  Credentials
}

// NewWeatherFetcher builds a fetcher for current weather conditions.
func NewWeatherFetcher(client HTTPClient, creds Credentials) Fetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	return &weatherFetcher{client: client, creds: creds}
}

func (f *weatherFetcher) ID() string {
	return TypeWeather
}

const (
	ConfigLocationKey = "location"
	ConfigLinkKey     = "link"
)

func (f *weatherFetcher) Fetch(ctx context.Context, src Source) ([]Record, error) {
	raw, err := download(ctx, f.client, src, f.creds)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("decode %s response: invalid json: %s", src.ID, responseSnippet(raw))
	}

	doc := gjson.ParseBytes(raw)
	path := src.ItemsPath
	if path == "" {
		path = "current"
	}
	current := doc.Get(path)
	if !current.IsObject() {
		return nil, fmt.Errorf("decode %s response: %q block missing", src.ID, path)
	}
	temp := current.Get("temperature_2m")
	if !temp.Exists() {
		return nil, fmt.Errorf("decode %s response: temperature missing", src.ID)
	}

	unit := doc.Get("current_units.temperature_2m").String()
	if unit == "" {
		unit = "°C"
	}
	condition := WeatherCondition(int(current.Get("weather_code").Int()))

	title := fmt.Sprintf("%d%s, %s", int(math.Round(temp.Float())), unit, condition)
	if loc := ConfigString(src, ConfigLocationKey, ""); loc != "" {
		title = loc + ": " + title
	}

	var details []string
	if wind := current.Get("wind_speed_10m"); wind.Exists() {
		windUnit := doc.Get("current_units.wind_speed_10m").String()
		if windUnit == "" {
			windUnit = "km/h"
		}
		details = append(details, fmt.Sprintf("Wind %d %s", int(math.Round(wind.Float())), windUnit))
	}
	if hum := current.Get("relative_humidity_2m"); hum.Exists() {
		details = append(details, fmt.Sprintf("Humidity %d%%", hum.Int()))
	}

	rec := MapRecord{FieldTitle: title}
	if len(details) > 0 {
		rec[FieldSummary] = strings.Join(details, " · ")
	}
	if link := ConfigString(src, ConfigLinkKey, ""); link != "" {
		rec[FieldLink] = link
	}
	if ts := current.Get("time").String(); ts != "" {
		rec[FieldDate] = ts
	}
	return []Record{rec}, nil
}

// WeatherCondition maps a WMO weather interpretation code to a short label.
func WeatherCondition(code int) string {
	switch code {
	case 0:
		return "Clear sky"
	case 1:
		return "Mainly clear"
	case 2:
		return "Partly cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Fog"
	case 51, 53, 55:
		return "Drizzle"
	case 56, 57:
		return "Freezing drizzle"
	case 61:
		return "Light rain"
	case 63:
		return "Rain"
	case 65:
		return "Heavy rain"
	case 66, 67:
		return "Freezing rain"
	case 71:
		return "Light snow"
	case 73:
		return "Snow"
	case 75:
		return "Heavy snow"
	case 77:
		return "Snow grains"
	case 80, 81, 82:
		return "Rain showers"
	case 85, 86:
		return "Snow showers"
	case 95:
		return "Thunderstorm"
	case 96, 99:
		return "Thunderstorm with hail"
	default:
		return "Unknown conditions"
	}
}
