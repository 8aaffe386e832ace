package provider

import (
	"context"
	"net/http"

	"energy_dashboard/internal/model"
)

// TariffClient reads the time-of-use rate history, newest entry first.
type TariffClient struct {
	baseClient
}

func NewTariffClient(baseURL, token string, hc *http.Client) *TariffClient {
	return &TariffClient{baseClient: newBaseClient(baseURL, token, hc)}
}

func (c *TariffClient) History(ctx context.Context) ([]model.TOURate, error) {
	var history []model.TOURate
	if _, err := c.getJSON(ctx, c.baseURL+"/tou/history", &history); err != nil {
		return nil, err
	}
	return history, nil
}
