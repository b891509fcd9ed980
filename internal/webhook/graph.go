package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"salescrm_backend/platform/apperr"
	"salescrm_backend/platform/config"
)

const opFetchLead = "webhook.graph.fetch_lead"

// GraphLead is the lead detail fetched from the Meta Graph API for a
// leadgen ID delivered via webhook.
type GraphLead struct {
	ID           string      `json:"id"`
	AdName       string      `json:"ad_name"`
	CampaignName string      `json:"campaign_name"`
	FieldData    []FieldData `json:"field_data"`
}

// LeadFetcher retrieves leadgen details by ID.
type LeadFetcher interface {
	FetchLead(ctx context.Context, leadgenID string) (GraphLead, error)
}

// GraphClient calls the Meta Graph API with a bounded-timeout HTTP client.
type GraphClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewGraphClient creates a Graph API client from webhook config.
func NewGraphClient(cfg config.WebhookConfig) *GraphClient {
	return &GraphClient{
		baseURL:     cfg.GetMetaGraphBaseURL(),
		accessToken: cfg.GetMetaAccessToken(),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchLead fetches the field data and ad metadata for one leadgen ID.
func (g *GraphClient) FetchLead(ctx context.Context, leadgenID string) (GraphLead, error) {
	if g == nil || g.accessToken == "" {
		return GraphLead{}, apperr.Internal("meta access token not configured").WithOp(opFetchLead)
	}

	endpoint := fmt.Sprintf("%s/%s?fields=field_data,ad_name,campaign_name&access_token=%s",
		g.baseURL, url.PathEscape(leadgenID), url.QueryEscape(g.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return GraphLead{}, apperr.Wrap(apperr.KindInternal, "build graph request failed", err).WithOp(opFetchLead)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return GraphLead{}, apperr.Wrap(apperr.KindInternal, "graph request failed", err).WithOp(opFetchLead)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GraphLead{}, apperr.Internal(fmt.Sprintf("graph request returned %d", resp.StatusCode)).WithOp(opFetchLead)
	}

	var lead GraphLead
	if err := json.NewDecoder(resp.Body).Decode(&lead); err != nil {
		return GraphLead{}, apperr.Wrap(apperr.KindInternal, "decode graph response failed", err).WithOp(opFetchLead)
	}

	return lead, nil
}
