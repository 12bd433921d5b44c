package weather

import (
	"math"
	"time"
)

// forecastItem is one 3-hour sample from the provider's forecast list.
type forecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Pop float64 `json:"pop"`
}

// buildForecast groups 3-hour samples into at most five daily summaries.
//
// Samples are bucketed by the location's local calendar date, derived by
// shifting each sample's timestamp by tzOffset seconds. Per date, tempMin
// and tempMax are the rounded extremes across all of that date's samples.
// The representative condition/description/icon/humidity/wind/pop come from
// the sample at index floor(count/2) of the date's sample list: the
// positional midpoint, not the sample closest to local noon. The first and
// last date usually hold fewer than eight samples, so their midpoint can sit
// well away from midday. Saved dashboards compare against this value, so the
// quirk is load-bearing.
func buildForecast(items []forecastItem, tzOffset int) []ForecastDay {
	offset := time.Duration(tzOffset) * time.Second

	type bucket struct {
		temps []float64
		items []forecastItem
		first time.Time
	}
	var order []string
	buckets := make(map[string]*bucket)

	for _, item := range items {
		local := time.Unix(item.Dt, 0).UTC().Add(offset)
		key := local.Format("2006-01-02")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{first: local}
			buckets[key] = b
			order = append(order, key)
		}
		b.temps = append(b.temps, item.Main.Temp)
		b.items = append(b.items, item)
	}

	days := make([]ForecastDay, 0, 5)
	for _, key := range order {
		if len(days) >= 5 {
			break
		}
		b := buckets[key]

		min, max := b.temps[0], b.temps[0]
		for _, t := range b.temps[1:] {
			if t < min {
				min = t
			}
			if t > max {
				max = t
			}
		}

		mid := b.items[len(b.items)/2]
		day := ForecastDay{
			Date:          b.first.Format("Mon, Jan 2"),
			DateTimestamp: b.items[0].Dt,
			TempMin:       int(math.Round(min)),
			TempMax:       int(math.Round(max)),
			Humidity:      mid.Main.Humidity,
			WindSpeed:     mid.Wind.Speed,
			Pop:           int(math.Round(mid.Pop * 100)),
		}
		if len(mid.Weather) > 0 {
			day.Condition = mid.Weather[0].Main
			day.Description = mid.Weather[0].Description
			day.Icon = mid.Weather[0].Icon
		}
		days = append(days, day)
	}
	return days
}
