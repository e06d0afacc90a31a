package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pubky-garden/pubky-playground"
	"github.com/pubky-garden/pubky-playground/specs"
)

const (
	defaultTimeout = 3 * time.Second
	userAgent      = "pubky-playground"
)

// Client reads records from remote homeservers. Well-known documents are
// cached for a short window; content-addressed records are cached too,
// since their identifier can never point at different content.
type Client struct {
	client            *http.Client
	cache             *cache.Cache
	defaultHomeserver string
}

func New(defaultHomeserver string) *Client {
	httpClient := http.Client{
		Timeout: defaultTimeout,
	}

	c := &Client{
		client:            &httpClient,
		cache:             cache.New(10*time.Minute, 15*time.Minute),
		defaultHomeserver: defaultHomeserver,
	}
	httpClient.Transport = c
	return c
}

type Options struct {
	// Homeserver overrides the client's default homeserver domain.
	Homeserver string
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	return http.DefaultTransport.RoundTrip(req)
}

// GetWellKnown fetches a homeserver's discovery document.
func (c *Client) GetWellKnown(ctx context.Context, domain string) (pubky.WellKnownPubky, error) {

	cacheKey := "wellknown:" + domain
	x, found := c.cache.Get(cacheKey)
	if found {
		return x.(pubky.WellKnownPubky), nil
	}

	url := "https://" + domain + "/.well-known/pubky"
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return pubky.WellKnownPubky{}, fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return pubky.WellKnownPubky{}, fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pubky.WellKnownPubky{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var wellknown pubky.WellKnownPubky
	err = json.NewDecoder(resp.Body).Decode(&wellknown)
	if err != nil {
		return pubky.WellKnownPubky{}, fmt.Errorf("failed to decode well-known document: %v", err)
	}

	c.cache.Set(cacheKey, wellknown, cache.DefaultExpiration)

	return wellknown, nil
}

// GetRecord resolves a pubky:// record URI against a homeserver and
// decodes the record content into result.
func (c *Client) GetRecord(ctx context.Context, uri string, opts Options, result any) error {

	owner, plural, id, err := pubky.ParsePubkyURI(uri)
	if err != nil {
		return fmt.Errorf("failed to parse pubky uri: %v", err)
	}

	kind, ok := specs.KindFromPlural(plural)
	if !ok {
		return fmt.Errorf("unknown record kind: %s", plural)
	}

	cacheKey := "record:" + uri
	if kind.ContentAddressed() {
		if x, found := c.cache.Get(cacheKey); found {
			return json.Unmarshal(x.([]byte), result)
		}
	}

	homeserver := opts.Homeserver
	if homeserver == "" {
		homeserver = c.defaultHomeserver
	}
	if homeserver == "" {
		return fmt.Errorf("homeserver cannot be empty")
	}

	wellknown, err := c.GetWellKnown(ctx, homeserver)
	if err != nil {
		return fmt.Errorf("failed to get well-known for %s: %v", homeserver, err)
	}

	endpoint, ok := wellknown.Endpoints["app.pubky.record"]
	if !ok {
		return fmt.Errorf("record endpoint not found")
	}

	endpoint = strings.ReplaceAll(endpoint, "{owner}", owner)
	endpoint = strings.ReplaceAll(endpoint, "{kind}", plural)
	endpoint = strings.ReplaceAll(endpoint, "{id}", id)
	endpoint = "https://" + wellknown.Domain + endpoint

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to get record: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var raw json.RawMessage
	err = json.NewDecoder(resp.Body).Decode(&raw)
	if err != nil {
		return fmt.Errorf("failed to decode record: %v", err)
	}

	if kind.ContentAddressed() {
		c.cache.Set(cacheKey, []byte(raw), cache.DefaultExpiration)
	}

	return json.Unmarshal(raw, result)
}
