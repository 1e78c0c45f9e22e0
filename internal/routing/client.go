// Package routing talks to the OpenRouteService directions and geocoding API.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
)

var ErrNoRoute = errors.New("no route found")

const maxResponseBytes = 4 << 20

// UpstreamError is a non-2xx answer from the provider.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("routing provider returned %d", e.Status)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

// Coordinate is a [lng, lat] pair as the provider expects it.
type Coordinate [2]float64

type directionsRequest struct {
	Coordinates []Coordinate `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
		} `json:"summary"`
	} `json:"routes"`
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties struct {
			Label string `json:"label"`
		} `json:"properties"`
	} `json:"features"`
}

// Directions returns the provider's raw driving route between two points.
func (c *Client) Directions(ctx context.Context, start, end Coordinate) ([]byte, error) {
	payload, err := json.Marshal(directionsRequest{Coordinates: []Coordinate{start, end}})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/directions/driving-car", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// Distance returns the one-way road distance in kilometres.
func (c *Client) Distance(ctx context.Context, from, to domain.Location) (float64, error) {
	body, err := c.Directions(ctx, Coordinate{from.Lng, from.Lat}, Coordinate{to.Lng, to.Lat})
	if err != nil {
		return 0, err
	}

	var resp directionsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("decode directions: %w", err)
	}
	if len(resp.Routes) == 0 || resp.Routes[0].Summary.Distance <= 0 {
		return 0, ErrNoRoute
	}
	return resp.Routes[0].Summary.Distance / 1000, nil
}

// Search resolves free text to the best matching location.
func (c *Client) Search(ctx context.Context, text string) (*domain.Location, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("text", text)
	return c.geocode(ctx, "/geocode/search", q)
}

// Reverse resolves a point to its nearest address label.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (*domain.Location, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("point.lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("point.lon", strconv.FormatFloat(lng, 'f', -1, 64))
	return c.geocode(ctx, "/geocode/reverse", q)
}

func (c *Client) geocode(ctx context.Context, path string, q url.Values) (*domain.Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode geocode: %w", err)
	}
	if len(resp.Features) == 0 || len(resp.Features[0].Geometry.Coordinates) < 2 {
		return nil, fmt.Errorf("%w: no location matched", domain.ErrNotFound)
	}
	f := resp.Features[0]
	return &domain.Location{
		Label: f.Properties.Label,
		Lng:   f.Geometry.Coordinates[0],
		Lat:   f.Geometry.Coordinates[1],
	}, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call routing provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read routing response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("routing response exceeds %d bytes", maxResponseBytes)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}
