/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "context"
    "errors"
    "net/http"

    "github.com/gin-gonic/gin"
    "github.com/google/uuid"
    "github.com/rs/zerolog"

    "github.com/sudhi001/jira-worklog-summary/internal/auth"
    "github.com/sudhi001/jira-worklog-summary/internal/config"
    "github.com/sudhi001/jira-worklog-summary/internal/domain"
    "github.com/sudhi001/jira-worklog-summary/internal/errs"
    "github.com/sudhi001/jira-worklog-summary/internal/services"
    "github.com/sudhi001/jira-worklog-summary/internal/session"
)

type summaryService interface {
    Summary(ctx context.Context, p domain.Principal, store services.TokenStore, req services.SummaryRequest) (domain.Summary, error)
}

type oauthProvider interface {
    AuthCodeURL(state string) string
    Exchange(ctx context.Context, code string) (auth.TokenPair, error)
    CloudID(ctx context.Context, accessToken string) (string, error)
    Myself(ctx context.Context, accessToken, cloudID string) (domain.UserInfo, error)
}

type Handlers struct {
    cfg   config.Config
    log   zerolog.Logger
    svc   summaryService
    oauth oauthProvider
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc summaryService, oauth oauthProvider) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc, oauth: oauth}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Login(c *gin.Context) {
    st := session.NewStore(c, h.cfg.SessionMaxAge)
    state := uuid.NewString()
    st.SetOAuthState(state)
    c.Redirect(http.StatusFound, h.oauth.AuthCodeURL(state))
}

func (h *Handlers) Callback(c *gin.Context) {
    st := session.NewStore(c, h.cfg.SessionMaxAge)

    if errParam := c.Query("error"); errParam != "" {
        h.log.Warn().Str("error", errParam).Msg("oauth callback error")
        st.Clear()
        c.JSON(http.StatusBadRequest, gin.H{"error": "oauth error: " + errParam})
        return
    }
    code := c.Query("code")
    if code == "" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
        return
    }
    if state := c.Query("state"); state == "" || state != st.OAuthState() {
        h.log.Warn().Msg("oauth state mismatch")
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state parameter"})
        return
    }

    pair, err := h.oauth.Exchange(c.Request.Context(), code)
    if err != nil {
        h.log.Error().Err(err).Msg("token exchange failed")
        st.Clear()
        c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication failed"})
        return
    }
    st.SetAccessToken(pair.AccessToken)
    if pair.RefreshToken != "" {
        st.SetRefreshToken(pair.RefreshToken)
    }
    st.ClearOAuthState()

    // Identity fetch is best-effort here; the summary path refetches when
    // the cache is missing.
    if cloudID, err := h.oauth.CloudID(c.Request.Context(), pair.AccessToken); err != nil {
        h.log.Warn().Err(err).Msg("cloud id lookup failed")
    } else if u, err := h.oauth.Myself(c.Request.Context(), pair.AccessToken, cloudID); err != nil {
        h.log.Warn().Err(err).Msg("user info fetch failed")
    } else {
        st.SetUserInfo(u)
    }

    c.Redirect(http.StatusFound, "/auth/me")
}

func (h *Handlers) Logout(c *gin.Context) {
    st := session.NewStore(c, h.cfg.SessionMaxAge)
    st.Clear()
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Me(c *gin.Context) {
    st := session.NewStore(c, h.cfg.SessionMaxAge)
    p, ok := h.principal(c, st)
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "accountId":   p.AccountID,
        "displayName": p.DisplayName,
        "email":       p.Email,
    })
}

type summaryRequest struct {
    AccountID string `json:"accountId"`
    StartDate string `json:"startDate"`
    EndDate   string `json:"endDate"`
}

func (h *Handlers) WorklogSummary(c *gin.Context) {
    var req summaryRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "VALIDATION_ERROR"})
        return
    }

    st := session.NewStore(c, h.cfg.SessionMaxAge)
    p, ok := h.principal(c, st)
    if !ok {
        c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "code": "AUTHENTICATION_ERROR"})
        return
    }

    out, err := h.svc.Summary(c.Request.Context(), p, st, services.SummaryRequest{
        AccountID: req.AccountID,
        StartDate: req.StartDate,
        EndDate:   req.EndDate,
    })
    if err != nil {
        h.renderError(c, err)
        return
    }
    c.JSON(http.StatusOK, out)
}

// principal rebuilds the caller from session cookies, refetching identity
// from the API when the cached copy is missing.
func (h *Handlers) principal(c *gin.Context, st *session.Store) (domain.Principal, bool) {
    token := st.AccessToken()
    if token == "" { return domain.Principal{}, false }

    u := st.UserInfo()
    if u == nil {
        cloudID, err := h.oauth.CloudID(c.Request.Context(), token)
        if err != nil {
            h.log.Warn().Err(err).Msg("cloud id lookup failed")
            return domain.Principal{}, false
        }
        ui, err := h.oauth.Myself(c.Request.Context(), token, cloudID)
        if err != nil {
            h.log.Warn().Err(err).Msg("user info fetch failed")
            return domain.Principal{}, false
        }
        st.SetUserInfo(ui)
        u = &ui
    }
    return domain.Principal{
        AccountID:   u.AccountID,
        DisplayName: u.DisplayName,
        Email:       u.EmailAddress,
        AccessToken: token,
        CloudID:     u.CloudID,
    }, true
}

func (h *Handlers) renderError(c *gin.Context, err error) {
    var ve *errs.ValidationError
    var ae *errs.AuthenticationError
    var ese *errs.ExternalServiceError
    switch {
    case errors.As(err, &ve):
        c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error(), "code": "VALIDATION_ERROR"})
    case errors.As(err, &ae):
        c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please login again", "code": "AUTHENTICATION_ERROR"})
    case errors.As(err, &ese):
        status := ese.StatusCode
        if status < 400 { status = http.StatusBadGateway }
        h.log.Error().Err(err).Msg("upstream failure")
        c.JSON(status, gin.H{"error": "upstream service error", "code": "EXTERNAL_SERVICE_ERROR"})
    default:
        h.log.Error().Err(err).Msg("unhandled error")
        c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
    }
}
