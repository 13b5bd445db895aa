package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"whatsup/pkg/types"
)

const (
	defaultAuthBase = "https://www.reddit.com"
	defaultAPIBase  = "https://oauth.reddit.com"
)

// Credentials are the script-app credentials for the password grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// CredentialsFromEnv reads REDDIT_CLIENT_ID, REDDIT_CLIENT_SECRET,
// REDDIT_USERNAME and REDDIT_PASSWORD.
func CredentialsFromEnv() Credentials {
	return Credentials{
		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		Username:     os.Getenv("REDDIT_USERNAME"),
		Password:     os.Getenv("REDDIT_PASSWORD"),
	}
}

// Validate reports which required credentials are missing.
func (c Credentials) Validate() error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client secret")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing credentials: %s", types.ErrAuth, strings.Join(missing, ", "))
	}
	return nil
}

// Client talks to the Reddit JSON API. It implements API.
type Client struct {
	creds     Credentials
	userAgent string
	http      *http.Client

	authBase string
	apiBase  string

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURLs overrides the auth and API endpoints (used by tests).
func WithBaseURLs(authBase, apiBase string) Option {
	return func(c *Client) {
		c.authBase = authBase
		c.apiBase = apiBase
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient validates the credentials and returns an unauthenticated
// client. The first API call (or an explicit Authenticate) fetches a token.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		creds:     creds,
		userAgent: fmt.Sprintf("script:whatsup:v1.0 (by /u/%s)", creds.Username),
		http:      &http.Client{Timeout: 30 * time.Second},
		authBase:  defaultAuthBase,
		apiBase:   defaultAPIBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ API = (*Client)(nil)

// Authenticate fetches an OAuth token with the password grant. It returns a
// types.ErrAuth error when Reddit rejects the credentials, so the driver can
// abort the run before scraping.
func (c *Client) Authenticate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshTokenLocked(ctx)
}

func (c *Client) refreshTokenLocked(ctx context.Context) error {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {c.creds.Username},
		"password":   {c.creds.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authBase+"/api/v1/access_token", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: build token request: %v", types.ErrTransient, err)
	}
	req.SetBasicAuth(c.creds.ClientID, c.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: token request: %v", types.ErrTransient, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: token endpoint returned %d", types.ErrAuth, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: token endpoint returned %d", types.ErrTransient, resp.StatusCode)
	}

	var tok struct {
		AccessToken string  `json:"access_token"`
		ExpiresIn   float64 `json:"expires_in"`
		Error       string  `json:"error"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("%w: parse token response: %v", types.ErrTransient, err)
	}
	// Reddit reports bad script credentials with a 200 and an error field.
	if tok.Error != "" || tok.AccessToken == "" {
		return fmt.Errorf("%w: token endpoint error %q", types.ErrAuth, tok.Error)
	}

	c.token = tok.AccessToken
	expiry := time.Duration(tok.ExpiresIn) * time.Second
	if expiry <= 0 {
		expiry = time.Hour
	}
	c.tokenExpiry = time.Now().Add(expiry - time.Minute)
	return nil
}

func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || time.Now().After(c.tokenExpiry) {
		if err := c.refreshTokenLocked(ctx); err != nil {
			return "", err
		}
	}
	return c.token, nil
}

// get performs an authenticated GET and decodes the JSON body into v.
func (c *Client) get(ctx context.Context, path string, query url.Values, v any) error {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return err
	}

	u := c.apiBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", types.ErrTransient, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %v", types.ErrTransient, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: GET %s returned %d", types.ErrAuth, path, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited on %s", types.ErrTransient, path)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: GET %s returned %d", types.ErrTransient, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", types.ErrTransient, path, err)
	}
	return nil
}

// TopPosts implements API.
func (c *Client) TopPosts(ctx context.Context, subreddit string, limit int, timeFilter string) ([]types.Post, error) {
	var lst listingThing
	q := url.Values{
		"limit": {strconv.Itoa(limit)},
		"t":     {timeFilter},
	}
	if err := c.get(ctx, "/r/"+url.PathEscape(subreddit)+"/top.json", q, &lst); err != nil {
		return nil, err
	}

	posts := make([]types.Post, 0, len(lst.Data.Children))
	for _, child := range lst.Data.Children {
		if child.Kind != kindPost {
			continue
		}
		var pd postData
		if err := json.Unmarshal(child.Data, &pd); err != nil {
			continue
		}
		posts = append(posts, pd.toPost())
	}
	return posts, nil
}

// TopComments implements API.
func (c *Client) TopComments(ctx context.Context, postID string, limit int) ([]types.Comment, error) {
	var thread commentThread
	q := url.Values{
		"limit": {strconv.Itoa(limit)},
		"depth": {"1"},
	}
	if err := c.get(ctx, "/comments/"+url.PathEscape(postID)+".json", q, &thread); err != nil {
		return nil, err
	}
	if len(thread) < 2 {
		return nil, nil
	}
	return flattenComments(thread[1], limit), nil
}

// Replies implements API.
func (c *Client) Replies(ctx context.Context, postID, commentID string, limit int) ([]types.Comment, error) {
	var thread commentThread
	q := url.Values{
		"depth":   {"2"},
		"context": {"0"},
	}
	path := "/comments/" + url.PathEscape(postID) + "/_/" + url.PathEscape(commentID) + ".json"
	if err := c.get(ctx, path, q, &thread); err != nil {
		return nil, err
	}
	if len(thread) < 2 {
		return nil, nil
	}

	// The focal comment is the first child of the second listing; its
	// replies field is itself a listing of the direct children we want.
	for _, child := range thread[1].Data.Children {
		if child.Kind != kindComment {
			continue
		}
		var cd commentData
		if err := json.Unmarshal(child.Data, &cd); err != nil {
			continue
		}
		if cd.ID != commentID {
			continue
		}
		var replies listingThing
		if len(cd.Replies) > 0 && cd.Replies[0] == '{' {
			if err := json.Unmarshal(cd.Replies, &replies); err != nil {
				return nil, nil
			}
		}
		return flattenComments(replies, limit), nil
	}
	return nil, nil
}

// SearchCommunities implements API.
func (c *Client) SearchCommunities(ctx context.Context, query string, limit int) ([]types.SubredditInfo, error) {
	var lst listingThing
	q := url.Values{
		"q":     {query},
		"limit": {strconv.Itoa(limit)},
	}
	if err := c.get(ctx, "/subreddits/search.json", q, &lst); err != nil {
		return nil, err
	}

	infos := make([]types.SubredditInfo, 0, len(lst.Data.Children))
	for _, child := range lst.Data.Children {
		if child.Kind != kindSubreddit {
			continue
		}
		var sd subredditData
		if err := json.Unmarshal(child.Data, &sd); err != nil {
			continue
		}
		infos = append(infos, types.SubredditInfo{
			Name:        sd.DisplayName,
			Description: sd.PublicDescription,
			Subscribers: sd.Subscribers,
			URL:         "https://reddit.com/r/" + sd.DisplayName,
		})
	}
	return infos, nil
}
