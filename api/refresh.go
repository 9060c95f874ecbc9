package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/condovista/condoctl/session"
)

const refreshPath = "/auth/refresh/"

// refresher owns the single-slot in-flight refresh. Any number of requests
// failing with a 401 in the same window share one network call and observe
// the same new token or the same failure. A completed flight is forgotten,
// so a later, independently expired token starts a fresh one.
type refresher struct {
	baseURL    string
	httpClient *http.Client
	store      session.Store
	group      singleflight.Group
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

func newRefresher(baseURL string, httpClient *http.Client, store session.Store) *refresher {
	return &refresher{
		baseURL:    baseURL,
		httpClient: httpClient,
		store:      store,
	}
}

// refresh returns a newly minted access token. The token is written to the
// session store before any waiter gets it back, so requests built after this
// point pick it up through the normal outbound path.
func (r *refresher) refresh(ctx context.Context) (string, error) {
	v, err, _ := r.group.Do(refreshPath, func() (any, error) {
		return r.mint(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *refresher) mint(ctx context.Context) (any, error) {
	refreshToken, ok := r.store.RefreshToken()
	if !ok {
		return nil, ErrNoRefreshToken
	}

	raw, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return nil, errors.Wrap(err, "[refresher.mint] marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+refreshPath, bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "[refresher.mint] build request")
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[refresher.mint] refresh call")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[refresher.mint] read response body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &Error{StatusCode: resp.StatusCode, Body: body}
	}

	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, errors.Wrap(err, "[refresher.mint] decode response")
	}
	if parsed.Access == "" {
		return nil, errors.New("[refresher.mint] refresh response missing access token")
	}

	if err := r.store.SetAccessToken(parsed.Access); err != nil {
		return nil, errors.Wrap(err, "[refresher.mint] store access token")
	}
	if parsed.Refresh != "" {
		if err := r.store.SetRefreshToken(parsed.Refresh); err != nil {
			return nil, errors.Wrap(err, "[refresher.mint] store refresh token")
		}
	}

	return parsed.Access, nil
}
