package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"energy_dashboard/internal/model"
)

// WeatherClient queries an OpenWeatherMap-compatible current weather API.
type WeatherClient struct {
	baseClient
	apiKey string
}

func NewWeatherClient(baseURL, apiKey string, hc *http.Client) *WeatherClient {
	return &WeatherClient{
		baseClient: newBaseClient(baseURL, "", hc),
		apiKey:     apiKey,
	}
}

type weatherResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// Fetch returns the current weather at the given coordinates. The response
// must carry a location name.
func (c *WeatherClient) Fetch(ctx context.Context, lat, lon float64) (model.Weather, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("units", "metric")
	if c.apiKey != "" {
		q.Set("appid", c.apiKey)
	}

	var resp weatherResponse
	body, err := c.getJSON(ctx, c.baseURL+"/weather?"+q.Encode(), &resp)
	if err != nil {
		return model.Weather{}, err
	}
	if resp.Name == "" {
		return model.Weather{}, errors.New("weather response has no location name")
	}

	w := model.Weather{
		Name:  resp.Name,
		TempC: resp.Main.Temp,
		Raw:   json.RawMessage(body),
	}
	if len(resp.Weather) > 0 {
		w.Description = resp.Weather[0].Description
	}
	return w, nil
}
