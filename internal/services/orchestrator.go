/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "errors"
    "time"

    "github.com/sudhi001/jira-worklog-summary/internal/auth"
    "github.com/sudhi001/jira-worklog-summary/internal/domain"
    "github.com/sudhi001/jira-worklog-summary/internal/errs"
)

// TokenRefresher exchanges a refresh credential for a fresh token pair.
type TokenRefresher interface {
    Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
}

// TokenStore is where rotated credentials are persisted so later requests in
// the same session see them.
type TokenStore interface {
    RefreshToken() string
    SetAccessToken(token string)
    SetRefreshToken(token string)
}

type SummaryRequest struct {
    AccountID string
    StartDate string
    EndDate   string
}

func (r SummaryRequest) validate() error {
    if r.StartDate == "" {
        return &errs.ValidationError{Msg: "startDate is required"}
    }
    if r.EndDate == "" {
        return &errs.ValidationError{Msg: "endDate is required"}
    }
    if _, err := time.Parse("2006-01-02", r.StartDate); err != nil {
        return &errs.ValidationError{Msg: "startDate must be in YYYY-MM-DD format"}
    }
    if _, err := time.Parse("2006-01-02", r.EndDate); err != nil {
        return &errs.ValidationError{Msg: "endDate must be in YYYY-MM-DD format"}
    }
    if r.EndDate < r.StartDate {
        return &errs.ValidationError{Msg: "endDate must be greater than or equal to startDate"}
    }
    return nil
}

// Summary validates the request and runs the pipeline. An auth-shaped
// upstream failure triggers at most one token refresh followed by a single
// retried attempt; any failure after that surfaces as AuthenticationError so
// refreshing can never loop.
func (s *Service) Summary(ctx context.Context, p domain.Principal, store TokenStore, req SummaryRequest) (domain.Summary, error) {
    if err := req.validate(); err != nil { return nil, err }

    accountID := req.AccountID
    if accountID == "" { accountID = p.AccountID }
    if accountID == "" {
        return nil, &errs.ValidationError{Msg: "accountId is required"}
    }

    out, err := s.fetchSummary(ctx, s.clients(p), accountID, req.StartDate, req.EndDate)
    if err == nil { return out, nil }

    var ese *errs.ExternalServiceError
    if !errors.As(err, &ese) || !ese.AuthFailure() {
        return nil, err
    }

    refreshToken := store.RefreshToken()
    if refreshToken == "" {
        return nil, &errs.AuthenticationError{Msg: "session expired, please login again", Err: err}
    }

    pair, err := s.tokens.Refresh(ctx, refreshToken)
    if err != nil {
        s.log.Error().Err(err).Msg("token refresh failed")
        return nil, &errs.AuthenticationError{Msg: "session expired, please login again", Err: err}
    }

    // Persist before the retried call so the session keeps the rotated
    // credentials even if the retry fails.
    store.SetAccessToken(pair.AccessToken)
    if pair.RefreshToken != "" {
        store.SetRefreshToken(pair.RefreshToken)
    }

    refreshed := p
    refreshed.AccessToken = pair.AccessToken

    out, err = s.fetchSummary(ctx, s.clients(refreshed), accountID, req.StartDate, req.EndDate)
    if err != nil {
        return nil, &errs.AuthenticationError{Msg: "session expired, please login again", Err: err}
    }
    s.log.Info().Str("account", accountID).Msg("token refreshed and request retried")
    return out, nil
}
