package google

import (
	"context"
	"fmt"
	"sync"

	"github.com/kelvins/geocoder"
)

// API Docs: https://developers.google.com/maps/documentation/geocoding/requests-reverse-geocoding
// The geocoder package keeps its key in a package variable, so every client
// in the process shares one key.
var keyMu sync.Mutex

type Client struct {
	apiKey  string
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		reverse: geocoder.GeocodingReverse,
	}
}

// Lookup returns every address Google matches for the coordinate, most specific first
func (c *Client) Lookup(ctx context.Context, latitude, longitude float64) ([]geocoder.Address, error) {
	type result struct {
		addresses []geocoder.Address
		err       error
	}

	// The library call takes no context, so it runs detached and is abandoned on cancel
	results := make(chan result, 1)
	go func() {
		keyMu.Lock()
		geocoder.ApiKey = c.apiKey
		addresses, err := c.reverse(geocoder.Location{
			Latitude:  latitude,
			Longitude: longitude,
		})
		keyMu.Unlock()
		results <- result{addresses: addresses, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-results:
		if r.err != nil {
			return nil, fmt.Errorf("failed to reverse geocode: %w", r.err)
		}
		return r.addresses, nil
	}
}
