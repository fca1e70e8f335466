package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"reelchain/internal/services"
)

// DiscoverByYear lists popular movies released in year.
func (c *Client) DiscoverByYear(ctx context.Context, year int) ([]Movie, error) {
	params := url.Values{}
	params.Set("primary_release_year", strconv.Itoa(year))
	movies, err := c.discover(ctx, params)
	if err != nil {
		return nil, services.AsExternalServiceError(fmt.Sprintf("Failed to fetch movies for year %d", year), err)
	}
	return movies, nil
}

// DiscoverByCast lists popular movies featuring personID.
func (c *Client) DiscoverByCast(ctx context.Context, personID int64) ([]Movie, error) {
	params := url.Values{}
	params.Set("with_cast", strconv.FormatInt(personID, 10))
	movies, err := c.discover(ctx, params)
	if err != nil {
		return nil, services.AsExternalServiceError(fmt.Sprintf("Failed to fetch movies for cast member %d", personID), err)
	}
	return movies, nil
}

// Credits fetches the cast and crew for movieID.
func (c *Client) Credits(ctx context.Context, movieID int64) (Credits, error) {
	endpoint := c.endpoint("/movie/"+strconv.FormatInt(movieID, 10)+"/credits", url.Values{})
	body, err := c.Fetch(ctx, endpoint)
	if err != nil {
		return Credits{}, services.AsExternalServiceError(fmt.Sprintf("Failed to fetch credits for movie %d", movieID), err)
	}
	var credits Credits
	if err := json.Unmarshal(body, &credits); err != nil {
		return Credits{}, services.External(fmt.Sprintf("Failed to fetch credits for movie %d", movieID), fmt.Errorf("decode credits: %w", err))
	}
	return credits, nil
}

// Ping issues one discover request with no retry and no breaker.
func (c *Client) Ping(ctx context.Context, year int) error {
	params := url.Values{}
	params.Set("primary_release_year", strconv.Itoa(year))
	c.applyDiscoverDefaults(params)
	if _, err := c.attempt(ctx, c.endpoint("/discover/movie", params)); err != nil {
		return services.AsExternalServiceError("TMDB probe failed", err)
	}
	return nil
}

func (c *Client) discover(ctx context.Context, params url.Values) ([]Movie, error) {
	c.applyDiscoverDefaults(params)
	body, err := c.Fetch(ctx, c.endpoint("/discover/movie", params))
	if err != nil {
		return nil, err
	}
	var payload DiscoverResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode discover response: %w", err)
	}
	return payload.Results, nil
}

func (c *Client) applyDiscoverDefaults(params url.Values) {
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	if c.settings.MinRuntime > 0 {
		params.Set("with_runtime.gte", strconv.Itoa(c.settings.MinRuntime))
	}
}

// endpoint joins path onto the base URL and adds language and api_key.
func (c *Client) endpoint(path string, params url.Values) string {
	if c.settings.Language != "" {
		params.Set("language", c.settings.Language)
	}
	if c.settings.APIToken == "" && c.settings.APIKey != "" {
		params.Set("api_key", c.settings.APIKey)
	}
	return c.settings.BaseURL + path + "?" + params.Encode()
}
