package provider

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"energy_dashboard/internal/model"
)

// DiscomClient looks up distribution companies by provider identifier.
type DiscomClient struct {
	baseClient
}

func NewDiscomClient(baseURL, token string, hc *http.Client) *DiscomClient {
	return &DiscomClient{baseClient: newBaseClient(baseURL, token, hc)}
}

func (c *DiscomClient) Lookup(ctx context.Context, providerID string) (model.Discom, error) {
	if providerID == "" {
		return model.Discom{}, errors.New("discom lookup: empty provider id")
	}

	var d model.Discom
	if _, err := c.getJSON(ctx, c.baseURL+"/discoms/"+url.PathEscape(providerID), &d); err != nil {
		return model.Discom{}, err
	}
	if d.ID == "" {
		d.ID = providerID
	}
	return d, nil
}
