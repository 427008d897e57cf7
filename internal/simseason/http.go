package simseason

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rffl/korm/internal/domain/model"
)

// submitBody mirrors the POST /seasons request schema.
type submitBody struct {
	model.SeasonConfig
	Scores []model.WeekScore `json:"scores"`
}

type ackBody struct {
	Status    string `json:"status"`
	Season    int    `json:"season"`
	Duplicate bool   `json:"duplicate"`
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// submitSeason POSTs the generated season to the service.
func submitSeason(ctx context.Context, client *http.Client, baseURL string, season model.SeasonConfig, rows []model.WeekScore) (ackBody, error) {
	payload, err := json.Marshal(submitBody{SeasonConfig: season, Scores: rows})
	if err != nil {
		return ackBody{}, fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/seasons", bytes.NewReader(payload))
	if err != nil {
		return ackBody{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return ackBody{}, fmt.Errorf("submit season: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return ackBody{}, fmt.Errorf("submit season: unexpected status %d", resp.StatusCode)
	}
	var ack ackBody
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return ackBody{}, fmt.Errorf("decode ack: %w", err)
	}
	return ack, nil
}

// fetchOutcome polls GET /seasons/{year}/outcome until the replay worker
// has produced it or ctx expires.
func fetchOutcome(ctx context.Context, client *http.Client, baseURL string, season int, pollEvery time.Duration) (model.SeasonOutcome, error) {
	url := fmt.Sprintf("%s/seasons/%d/outcome", baseURL, season)
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return model.SeasonOutcome{}, fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return model.SeasonOutcome{}, fmt.Errorf("fetch outcome: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			var outcome model.SeasonOutcome
			err := json.NewDecoder(resp.Body).Decode(&outcome)
			resp.Body.Close()
			if err != nil {
				return model.SeasonOutcome{}, fmt.Errorf("decode outcome: %w", err)
			}
			return outcome, nil
		case http.StatusNotFound:
			// Replay still in flight.
			resp.Body.Close()
		default:
			resp.Body.Close()
			return model.SeasonOutcome{}, fmt.Errorf("fetch outcome: unexpected status %d", resp.StatusCode)
		}

		select {
		case <-ctx.Done():
			return model.SeasonOutcome{}, fmt.Errorf("outcome not ready: %w", ctx.Err())
		case <-time.After(pollEvery):
		}
	}
}

// fetchStandings retrieves the as-of-week standings reconstruction.
func fetchStandings(ctx context.Context, client *http.Client, baseURL string, season, week int) (model.Standings, error) {
	url := fmt.Sprintf("%s/seasons/%d/standings?week=%d", baseURL, season, week)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.Standings{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return model.Standings{}, fmt.Errorf("fetch standings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.Standings{}, fmt.Errorf("fetch standings: unexpected status %d", resp.StatusCode)
	}
	var standings model.Standings
	if err := json.NewDecoder(resp.Body).Decode(&standings); err != nil {
		return model.Standings{}, fmt.Errorf("decode standings: %w", err)
	}
	return standings, nil
}
