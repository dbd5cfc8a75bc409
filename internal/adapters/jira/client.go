/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
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

    "github.com/rs/zerolog"

    "github.com/sudhi001/jira-worklog-summary/internal/config"
    "github.com/sudhi001/jira-worklog-summary/internal/domain"
    "github.com/sudhi001/jira-worklog-summary/internal/errs"
)

const (
    serviceName = "jira"
    pageSize    = 100
    maxAttempts = 3
    backoffBase = 300 * time.Millisecond
)

// sharedTransport outlives any single Client so pooled connections are reused
// across requests and credential pairs.
var sharedTransport = &http.Transport{
    MaxIdleConns:        20,
    MaxIdleConnsPerHost: 10,
    IdleConnTimeout:     90 * time.Second,
}

// Client is bound to one credential/site pair at construction. When
// credentials rotate the orchestrator builds a new Client instead of
// mutating this one.
type Client struct {
    baseURL string
    token   string
    email   string
    apiTok  string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger, accessToken, cloudID string) *Client {
    base := "https://" + cfg.JiraDomain
    if accessToken != "" && cloudID != "" {
        base = strings.TrimRight(cfg.JiraAPIBaseURL, "/") + "/ex/jira/" + cloudID
    }
    return &Client{
        baseURL: base,
        token:   accessToken,
        email:   cfg.JiraEmail,
        apiTok:  cfg.JiraAPIToken,
        http:    &http.Client{Timeout: cfg.HTTPTimeout, Transport: sharedTransport},
        log:     log,
    }
}

// ---- wire types ----

type Issue struct {
    ID     string      `json:"id"`
    Key    string      `json:"key"`
    Fields IssueFields `json:"fields"`
}

type IssueFields struct {
    Summary  string         `json:"summary"`
    Reporter domain.UserRef `json:"reporter"`
}

type Worklog struct {
    ID               string         `json:"id"`
    Author           domain.UserRef `json:"author"`
    Started          string         `json:"started"`
    TimeSpentSeconds int            `json:"timeSpentSeconds"`
    Comment          *CommentDoc    `json:"comment"`
}

// CommentDoc is the structured rich-text body Jira stores for worklog
// comments: blocks of inline nodes, of which only "text" nodes matter here.
type CommentDoc struct {
    Content []CommentBlock `json:"content"`
}

type CommentBlock struct {
    Content []CommentNode `json:"content"`
}

type CommentNode struct {
    Type string `json:"type"`
    Text string `json:"text"`
}

type SearchResult struct {
    StartAt    int     `json:"startAt"`
    MaxResults int     `json:"maxResults"`
    Total      int     `json:"total"`
    Issues     []Issue `json:"issues"`
}

// ---- transport ----

func retryable(status int) bool {
    switch status {
    case http.StatusTooManyRequests,
        http.StatusInternalServerError,
        http.StatusBadGateway,
        http.StatusServiceUnavailable,
        http.StatusGatewayTimeout:
        return true
    }
    return false
}

// getJSON performs one logical GET with up to maxAttempts transparent retries
// on transient statuses and transport failures. Non-transient statuses fail
// immediately with a typed error.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
    u := c.baseURL + path
    if len(q) > 0 { u = u + "?" + q.Encode() }

    var last *errs.ExternalServiceError
    for attempt := 0; attempt < maxAttempts; attempt++ {
        if attempt > 0 {
            d := backoffBase * time.Duration(1<<(attempt-1))
            c.log.Debug().Int("attempt", attempt+1).Dur("backoff", d).Str("path", path).Msg("jira retry")
            select {
            case <-time.After(d):
            case <-ctx.Done():
                return &errs.ExternalServiceError{Service: serviceName, Msg: "request cancelled", Err: ctx.Err()}
            }
        }

        req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
        if err != nil {
            return &errs.ExternalServiceError{Service: serviceName, Msg: err.Error(), Err: err}
        }
        req.Header.Set("Accept", "application/json")
        if c.token != "" {
            req.Header.Set("Authorization", "Bearer "+c.token)
        } else if c.email != "" && c.apiTok != "" {
            req.SetBasicAuth(c.email, c.apiTok)
        }

        resp, err := c.http.Do(req)
        if err != nil {
            last = &errs.ExternalServiceError{Service: serviceName, Msg: "request failed: " + err.Error(), Err: err}
            continue
        }
        body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
        resp.Body.Close()
        if err != nil {
            last = &errs.ExternalServiceError{Service: serviceName, Msg: "read response: " + err.Error(), Err: err}
            continue
        }
        if resp.StatusCode < 200 || resp.StatusCode >= 300 {
            e := &errs.ExternalServiceError{Service: serviceName, StatusCode: resp.StatusCode, Msg: trimBody(body)}
            if retryable(resp.StatusCode) {
                last = e
                continue
            }
            return e
        }
        if err := json.Unmarshal(body, out); err != nil {
            return &errs.ExternalServiceError{Service: serviceName, Msg: "decode response: " + err.Error(), Err: err}
        }
        return nil
    }
    return last
}

func trimBody(b []byte) string {
    s := strings.TrimSpace(string(b))
    if len(s) > 300 { s = s[:300] + "..." }
    return s
}

// ---- API methods ----

// SearchIssues runs one page of an issue search.
func (c *Client) SearchIssues(ctx context.Context, jql string, fields []string, startAt, maxResults int) (SearchResult, error) {
    if jql == "" { return SearchResult{}, errors.New("jira: empty jql") }
    q := url.Values{}
    q.Set("jql", jql)
    q.Set("fields", strings.Join(fields, ","))
    q.Set("startAt", strconv.Itoa(startAt))
    q.Set("maxResults", strconv.Itoa(maxResults))
    var r SearchResult
    if err := c.getJSON(ctx, "/rest/api/3/search/jql", q, &r); err != nil {
        return SearchResult{}, err
    }
    return r, nil
}

// SearchWorklogIssues returns every issue carrying worklogs authored by the
// account. The query does not date-filter; the aggregator re-filters locally
// and never trusts search-phase fields for time data.
func (c *Client) SearchWorklogIssues(ctx context.Context, accountID string) ([]Issue, error) {
    if accountID == "" { return nil, errors.New("jira: empty account id") }
    jql := fmt.Sprintf("worklogAuthor = %q", accountID)

    var out []Issue
    startAt := 0
    for {
        r, err := c.SearchIssues(ctx, jql, []string{"summary", "reporter"}, startAt, pageSize)
        if err != nil { return nil, err }
        out = append(out, r.Issues...)
        startAt += len(r.Issues)
        if len(r.Issues) < pageSize || (r.Total > 0 && startAt >= r.Total) {
            break
        }
    }
    return out, nil
}

// GetIssueWorklogs fetches the issue's full worklog list, paging until done.
func (c *Client) GetIssueWorklogs(ctx context.Context, issueKey string) ([]Worklog, error) {
    if issueKey == "" { return nil, errors.New("jira: empty issue key") }

    type page struct {
        StartAt    int       `json:"startAt"`
        MaxResults int       `json:"maxResults"`
        Total      int       `json:"total"`
        Worklogs   []Worklog `json:"worklogs"`
    }

    var out []Worklog
    startAt := 0
    for {
        q := url.Values{}
        q.Set("startAt", strconv.Itoa(startAt))
        q.Set("maxResults", strconv.Itoa(pageSize))
        var p page
        if err := c.getJSON(ctx, "/rest/api/3/issue/"+url.PathEscape(issueKey)+"/worklog", q, &p); err != nil {
            return nil, err
        }
        out = append(out, p.Worklogs...)
        startAt += len(p.Worklogs)
        if len(p.Worklogs) < pageSize || (p.Total > 0 && startAt >= p.Total) {
            break
        }
    }
    return out, nil
}
