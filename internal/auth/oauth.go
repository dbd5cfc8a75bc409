/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package auth

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"

    "github.com/rs/zerolog"
    "golang.org/x/oauth2"

    "github.com/sudhi001/jira-worklog-summary/internal/config"
    "github.com/sudhi001/jira-worklog-summary/internal/domain"
    "github.com/sudhi001/jira-worklog-summary/internal/errs"
)

var scopes = []string{"read:jira-work", "read:jira-user", "offline_access"}

type TokenPair struct {
    AccessToken  string
    RefreshToken string
}

type Site struct {
    ID   string `json:"id"`
    URL  string `json:"url"`
    Name string `json:"name"`
}

// OAuth wraps the Atlassian three-legged flow plus the identity endpoints the
// service needs after login. The token endpoint itself is a black box behind
// golang.org/x/oauth2.
type OAuth struct {
    cfg     *oauth2.Config
    domain  string
    apiBase string
    http    *http.Client
    log     zerolog.Logger
}

func New(cfg config.Config, log zerolog.Logger) *OAuth {
    return &OAuth{
        cfg: &oauth2.Config{
            ClientID:     cfg.OAuthClientID,
            ClientSecret: cfg.OAuthClientSecret,
            RedirectURL:  cfg.OAuthRedirectURI,
            Scopes:       scopes,
            Endpoint: oauth2.Endpoint{
                AuthURL:  cfg.OAuthAuthorizeURL,
                TokenURL: cfg.OAuthTokenURL,
            },
        },
        domain:  cfg.JiraDomain,
        apiBase: strings.TrimRight(cfg.JiraAPIBaseURL, "/"),
        http:    &http.Client{Timeout: cfg.HTTPTimeout},
        log:     log,
    }
}

func (o *OAuth) AuthCodeURL(state string) string {
    return o.cfg.AuthCodeURL(state,
        oauth2.SetAuthURLParam("audience", "api.atlassian.com"),
        oauth2.SetAuthURLParam("prompt", "consent"),
    )
}

func (o *OAuth) Exchange(ctx context.Context, code string) (TokenPair, error) {
    tok, err := o.cfg.Exchange(o.clientCtx(ctx), code)
    if err != nil {
        return TokenPair{}, &errs.AuthenticationError{Msg: "token exchange failed", Err: err}
    }
    return TokenPair{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}, nil
}

// Refresh trades the refresh credential for a fresh pair. Returning the same
// refresh token is fine when the endpoint does not rotate it.
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
    if refreshToken == "" {
        return TokenPair{}, &errs.AuthenticationError{Msg: "no refresh token"}
    }
    src := o.cfg.TokenSource(o.clientCtx(ctx), &oauth2.Token{RefreshToken: refreshToken})
    tok, err := src.Token()
    if err != nil {
        return TokenPair{}, &errs.AuthenticationError{Msg: "token refresh failed", Err: err}
    }
    return TokenPair{AccessToken: tok.AccessToken, RefreshToken: tok.RefreshToken}, nil
}

func (o *OAuth) clientCtx(ctx context.Context) context.Context {
    return context.WithValue(ctx, oauth2.HTTPClient, o.http)
}

func (o *OAuth) AccessibleResources(ctx context.Context, accessToken string) ([]Site, error) {
    var sites []Site
    if err := o.getJSON(ctx, o.apiBase+"/oauth/token/accessible-resources", accessToken, &sites); err != nil {
        return nil, err
    }
    return sites, nil
}

// CloudID resolves the tenant for API calls, preferring the configured domain
// when the account can reach several sites.
func (o *OAuth) CloudID(ctx context.Context, accessToken string) (string, error) {
    sites, err := o.AccessibleResources(ctx, accessToken)
    if err != nil { return "", err }
    if len(sites) == 0 {
        return "", &errs.AuthenticationError{Msg: "no accessible Jira sites for this account"}
    }
    for _, s := range sites {
        if o.domain != "" && strings.Contains(s.URL, o.domain) {
            return s.ID, nil
        }
    }
    if len(sites) > 1 {
        o.log.Warn().Str("site", sites[0].URL).Msg("configured domain not accessible, using first site")
    }
    return sites[0].ID, nil
}

func (o *OAuth) Myself(ctx context.Context, accessToken, cloudID string) (domain.UserInfo, error) {
    var u domain.UserInfo
    url := o.apiBase + "/ex/jira/" + cloudID + "/rest/api/3/myself"
    if err := o.getJSON(ctx, url, accessToken, &u); err != nil {
        return domain.UserInfo{}, err
    }
    u.CloudID = cloudID
    return u, nil
}

func (o *OAuth) getJSON(ctx context.Context, url, accessToken string, out any) error {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return &errs.AuthenticationError{Msg: "build request", Err: err}
    }
    req.Header.Set("Accept", "application/json")
    req.Header.Set("Authorization", "Bearer "+accessToken)

    resp, err := o.http.Do(req)
    if err != nil {
        return &errs.AuthenticationError{Msg: "identity request failed", Err: err}
    }
    defer resp.Body.Close()
    body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
    if err != nil {
        return &errs.AuthenticationError{Msg: "read identity response", Err: err}
    }
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        return &errs.AuthenticationError{Msg: fmt.Sprintf("identity request rejected (status=%d)", resp.StatusCode)}
    }
    return json.Unmarshal(body, out)
}
