package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/rehttp"

	bootcampDomain "github.com/davicafu/devcamper/internal/bootcamp/domain"
)

const DefaultMapQuestURL = "https://www.mapquestapi.com"

// MapQuest implementa bootcampDomain.Geocoder contra la API de geocoding v1 de MapQuest.
type MapQuest struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ bootcampDomain.Geocoder = (*MapQuest)(nil)

// NewMapQuest crea el cliente con reintentos en errores temporales y 429/5xx.
func NewMapQuest(baseURL, apiKey string) *MapQuest {
	if baseURL == "" {
		baseURL = DefaultMapQuestURL
	}
	transport := rehttp.NewTransport(
		http.DefaultTransport,
		rehttp.RetryAll(
			rehttp.RetryMaxRetries(3),
			rehttp.RetryAny(
				rehttp.RetryTemporaryErr(),
				rehttp.RetryStatuses(http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout),
			),
		),
		rehttp.ExpJitterDelay(100*time.Millisecond, 2*time.Second),
	)
	return &MapQuest{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

type mqResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []mqLocation `json:"locations"`
	} `json:"results"`
}

type mqLocation struct {
	Street     string `json:"street"`
	AdminArea5 string `json:"adminArea5"` // ciudad
	AdminArea3 string `json:"adminArea3"` // estado
	AdminArea1 string `json:"adminArea1"` // país
	PostalCode string `json:"postalCode"`
	LatLng     struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

func (g *MapQuest) Geocode(ctx context.Context, address string) (*bootcampDomain.Location, error) {
	q := url.Values{}
	q.Set("key", g.apiKey)
	q.Set("location", address)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/geocoding/v1/address?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoder request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var body mqResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("geocoder response: %w", err)
	}
	if body.Info.StatusCode != 0 {
		return nil, fmt.Errorf("geocoder error %d: %s", body.Info.StatusCode, strings.Join(body.Info.Messages, "; "))
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return nil, bootcampDomain.ErrLocationNotFound
	}

	return toLocation(body.Results[0].Locations[0]), nil
}

func toLocation(l mqLocation) *bootcampDomain.Location {
	loc := bootcampDomain.NewPoint(l.LatLng.Lat, l.LatLng.Lng)
	loc.Street = l.Street
	loc.City = l.AdminArea5
	loc.State = l.AdminArea3
	loc.Zipcode = l.PostalCode
	loc.Country = l.AdminArea1

	var parts []string
	for _, p := range []string{l.Street, l.AdminArea5, strings.TrimSpace(l.AdminArea3 + " " + l.PostalCode), l.AdminArea1} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	loc.FormattedAddress = strings.Join(parts, ", ")
	return loc
}
