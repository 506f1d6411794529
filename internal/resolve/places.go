package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/kyuscout/kyuscout/internal/client"
	"github.com/kyuscout/kyuscout/internal/extract"
	"github.com/kyuscout/kyuscout/internal/types"
)

// placesDetailFields is the field mask requested from the details endpoint.
const placesDetailFields = "name,formatted_phone_number,international_phone_number,website,formatted_address"

// placesStatusHints maps the API's error statuses to actionable messages.
var placesStatusHints = map[string]string{
	"REQUEST_DENIED":   "API key invalid or Places API not enabled for it",
	"OVER_QUERY_LIMIT": "query limit exceeded, retry later",
	"INVALID_REQUEST":  "malformed request parameters",
	"NOT_FOUND":        "place_id no longer exists",
	"UNKNOWN_ERROR":    "server-side error, retry may succeed",
}

// Places resolves contacts through the Google Places API: a text search for
// the facility resolves a place_id, whose details carry the phone number,
// website and formatted address.
type Places struct {
	apiKey   string
	endpoint string
	fetcher  client.Fetcher
	logger   *slog.Logger
}

// NewPlaces creates the Places API source. endpoint is the API root,
// overridable for tests.
func NewPlaces(apiKey, endpoint string, fetcher client.Fetcher, logger *slog.Logger) *Places {
	return &Places{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(endpoint, "/"),
		fetcher:  fetcher,
		logger:   logger.With("component", "resolve", "source", "places"),
	}
}

func (p *Places) Name() string { return "places" }

func (p *Places) Resolve(ctx context.Context, facility, address string) (map[string]string, error) {
	if p.apiKey == "" {
		return nil, nil
	}

	query := facility
	if address != "" {
		query = facility + " " + address
	}

	placeID, err := p.searchPlace(ctx, facility, query)
	if err != nil {
		return nil, err
	}
	if placeID == "" {
		return nil, nil
	}

	return p.placeDetails(ctx, facility, placeID)
}

type placesSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID string `json:"place_id"`
	} `json:"results"`
}

func (p *Places) searchPlace(ctx context.Context, facility, query string) (string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("key", p.apiKey)
	params.Set("language", "ja")
	params.Set("region", "jp")

	var out placesSearchResponse
	if err := p.getJSON(ctx, "/textsearch/json", params, &out); err != nil {
		return "", err
	}

	switch out.Status {
	case "OK":
		if len(out.Results) == 0 {
			return "", nil
		}
		return out.Results[0].PlaceID, nil
	case "ZERO_RESULTS":
		return "", nil
	default:
		return "", p.statusError(facility, "text search", out.Status)
	}
}

type placesDetailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name                     string `json:"name"`
		FormattedPhoneNumber     string `json:"formatted_phone_number"`
		InternationalPhoneNumber string `json:"international_phone_number"`
		Website                  string `json:"website"`
		FormattedAddress         string `json:"formatted_address"`
	} `json:"result"`
}

func (p *Places) placeDetails(ctx context.Context, facility, placeID string) (map[string]string, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", placesDetailFields)
	params.Set("key", p.apiKey)
	params.Set("language", "ja")

	var out placesDetailsResponse
	if err := p.getJSON(ctx, "/details/json", params, &out); err != nil {
		return nil, err
	}

	switch out.Status {
	case "OK":
	case "ZERO_RESULTS", "NOT_FOUND":
		return nil, nil
	default:
		return nil, p.statusError(facility, "details", out.Status)
	}

	fields := make(map[string]string)
	phone := out.Result.FormattedPhoneNumber
	if phone == "" {
		phone = out.Result.InternationalPhoneNumber
	}
	if normalized := extract.NormalizePhone(phone); normalized != "" {
		fields[types.FieldPhoneNumber] = normalized
	}
	if out.Result.Website != "" {
		fields[types.FieldWebsiteURL] = out.Result.Website
	}
	if addr := out.Result.FormattedAddress; addr != "" {
		// ja-language responses prefix the country ("日本、〒150-0002 ...").
		addr = strings.TrimPrefix(addr, "日本、")
		fields[types.FieldAddress] = extract.CleanAddress(addr)
	}
	return fields, nil
}

func (p *Places) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := types.NewRequest(p.endpoint + path + "?" + params.Encode())
	if err != nil {
		return err
	}
	req.Tag = "places"

	resp, err := p.fetcher.Fetch(ctx, req)
	if err != nil {
		return fmt.Errorf("places request: %w", err)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decoding places response: %w", err)
	}
	return nil
}

func (p *Places) statusError(facility, op, status string) error {
	err := &types.ResolveError{
		Source:   p.Name(),
		Facility: facility,
		Err:      fmt.Errorf("%s returned status %s", op, status),
	}
	if hint, ok := placesStatusHints[status]; ok {
		p.logger.Warn("places API error", "op", op, "status", status, "hint", hint)
	}
	return err
}
