package etsy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xelth-com/shopdeskgo/internal/config"
	"golang.org/x/oauth2"
)

const (
	DefaultAuthURL    = "https://www.etsy.com/oauth/connect"
	DefaultTokenURL   = "https://api.etsy.com/v3/public/oauth/token"
	DefaultAPIBaseURL = "https://openapi.etsy.com/v3/application"

	// PlatformType identifies Etsy rows in the platforms table
	PlatformType     = "etsy"
	PlatformName     = "Etsy"
	PlatformEndpoint = "https://openapi.etsy.com/v3"

	callbackPath = "/etsy-callback"
)

// DefaultScopes is requested when ETSY_SCOPES is not set
var DefaultScopes = []string{"listings_r", "listings_w", "shops_r"}

// Token is the result of an authorization_code or refresh_token grant
type Token struct {
	AccessToken  string
	RefreshToken string
	// ExpiresIn is the lifetime in seconds reported by the provider, 0 when absent
	ExpiresIn int64
	// Expiry is the absolute expiry computed by the oauth2 library
	Expiry time.Time
}

// ExpiresAt computes the absolute expiry against now
func (t *Token) ExpiresAt(now time.Time) time.Time {
	if t.ExpiresIn > 0 {
		return now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	if !t.Expiry.IsZero() {
		return t.Expiry
	}
	// Without any expiry information the token is treated as already expired
	return now
}

// Shop is the shop profile returned by the API
type Shop struct {
	ShopID   int64  `json:"shop_id"`
	ShopName string `json:"shop_name"`
}

// Money is the provider's amount/divisor price representation
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	Divisor      int64           `json:"divisor"`
	CurrencyCode string          `json:"currency_code"`
}

// Decimal converts the price to base currency units (amount / divisor)
func (m Money) Decimal() (decimal.Decimal, error) {
	if m.Divisor <= 0 {
		return decimal.Zero, fmt.Errorf("invalid price divisor %d", m.Divisor)
	}
	return m.Amount.Div(decimal.NewFromInt(m.Divisor)), nil
}

// Listing is one active listing as returned by the API
type Listing struct {
	ListingID   int64  `json:"listing_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       Money  `json:"price"`
	Quantity    int    `json:"quantity"`
	State       string `json:"state"`
	URL         string `json:"url"`
}

type resultsPage[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// Client talks to the Etsy OAuth and Open API v3 endpoints
type Client struct {
	oauth      oauth2.Config
	apiKey     string
	baseURL    string
	HttpClient *http.Client
}

// NewClient creates a new Etsy client from configuration
func NewClient(cfg config.EtsyConfig) *Client {
	authURL := firstNonEmpty(cfg.AuthURL, DefaultAuthURL)
	tokenURL := firstNonEmpty(cfg.TokenURL, DefaultTokenURL)
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &Client{
		oauth: oauth2.Config{
			ClientID:     cfg.APIKey,
			ClientSecret: cfg.APISecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(firstNonEmpty(cfg.APIBaseURL, DefaultAPIBaseURL), "/"),
		HttpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// RedirectURI returns the redirect URI used for both legs of the handshake.
// A configured value wins; otherwise it is derived from the caller's origin.
func (c *Client) RedirectURI(callerOrigin string) string {
	if c.oauth.RedirectURL != "" {
		return c.oauth.RedirectURL
	}
	return strings.TrimRight(callerOrigin, "/") + callbackPath
}

func (c *Client) config(callerOrigin string) *oauth2.Config {
	conf := c.oauth
	conf.RedirectURL = c.RedirectURI(callerOrigin)
	return &conf
}

func (c *Client) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.HttpClient)
}

// AuthCodeURL builds the provider authorization URL carrying state
func (c *Client) AuthCodeURL(state, callerOrigin string) string {
	return c.config(callerOrigin).AuthCodeURL(state)
}

// Exchange performs the authorization_code grant
func (c *Client) Exchange(ctx context.Context, code, callerOrigin string) (*Token, error) {
	tok, err := c.config(callerOrigin).Exchange(c.oauthContext(ctx), code)
	if err != nil {
		return nil, err
	}
	return newToken(tok), nil
}

// Refresh performs the refresh_token grant
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Token, error) {
	// An empty access token forces the token source to refresh
	src := c.oauth.TokenSource(c.oauthContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, err
	}
	return newToken(tok), nil
}

// GetShop fetches the profile of the shop owned by the token holder
func (c *Client) GetShop(ctx context.Context, accessToken string) (*Shop, error) {
	var page resultsPage[Shop]
	if err := c.get(ctx, accessToken, "/shops", "shop", &page); err != nil {
		return nil, err
	}
	if len(page.Results) == 0 {
		return nil, &ProviderFetchError{Resource: "shop", err: errors.New("no shop in response")}
	}
	return &page.Results[0], nil
}

// GetActiveListings fetches one page of the shop's active listings
func (c *Client) GetActiveListings(ctx context.Context, accessToken, shopID string) ([]Listing, error) {
	var page resultsPage[Listing]
	path := fmt.Sprintf("/shops/%s/listings/active", shopID)
	if err := c.get(ctx, accessToken, path, "listings", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) get(ctx context.Context, accessToken, path, resource string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &ProviderFetchError{Resource: resource, err: err}
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	httpClient := oauth2.NewClient(c.oauthContext(ctx), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	resp, err := httpClient.Do(req)
	if err != nil {
		return &ProviderFetchError{Resource: resource, err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderFetchError{Resource: resource, StatusCode: resp.StatusCode, err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ProviderFetchError{
			Resource:   resource,
			StatusCode: resp.StatusCode,
			err:        errors.New(strings.TrimSpace(string(body))),
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ProviderFetchError{Resource: resource, StatusCode: resp.StatusCode, err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func newToken(tok *oauth2.Token) *Token {
	return &Token{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresIn:    expiresIn(tok.Extra("expires_in")),
		Expiry:       tok.Expiry,
	}
}

func expiresIn(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	case json.Number:
		i, _ := n.Int64()
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	}
	return 0
}

// retrieveErrorBody extracts the provider response body from a failed grant
func retrieveErrorBody(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return string(re.Body)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
