// MGNREGA Dashboard - District Employment Scheme Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mgnrega-dashboard

package geo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/mgnrega-dashboard/internal/config"
)

// DefaultGeocodeTimeout bounds one reverse lookup.
const DefaultGeocodeTimeout = 5 * time.Second

// Location is a reverse-geocoded place.
type Location struct {
	District    string `json:"district,omitempty"`
	State       string `json:"state,omitempty"`
	Country     string `json:"country,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// Geocoder calls a Nominatim-compatible /reverse endpoint. The public
// instance allows one request per second per client, so calls are paced.
type Geocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGeocoder builds a geocoder from cfg.
func NewGeocoder(cfg *config.GeoConfig) *Geocoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultGeocodeTimeout
	}
	return &Geocoder{
		baseURL:    strings.TrimRight(cfg.NominatimURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type nominatimResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
	Address     struct {
		StateDistrict string `json:"state_district"`
		County        string `json:"county"`
		City          string `json:"city"`
		State         string `json:"state"`
		Country       string `json:"country"`
	} `json:"address"`
}

// Reverse looks up the place at (lat, lng).
func (g *Geocoder) Reverse(ctx context.Context, lat, lng float64) (*Location, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("format", "json")
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("reverse geocode: HTTP %d", resp.StatusCode)
	}

	var body nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode reverse geocode: %w", err)
	}
	if body.Error != "" {
		return nil, fmt.Errorf("reverse geocode: %s", body.Error)
	}

	loc := &Location{
		District:    firstNonEmpty(body.Address.StateDistrict, body.Address.County, body.Address.City),
		State:       body.Address.State,
		Country:     body.Address.Country,
		DisplayName: body.DisplayName,
	}
	return loc, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
