/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package session

import (
    "encoding/base64"
    "encoding/json"
    "net/http"
    "time"

    "github.com/gin-gonic/gin"

    "github.com/sudhi001/jira-worklog-summary/internal/domain"
)

const (
    accessTokenCookie  = "access_token"
    refreshTokenCookie = "refresh_token"
    userInfoCookie     = "user_info"
    oauthStateCookie   = "oauth_state"
)

// Store reads and writes one request's session cookies. Tokens are opaque
// strings; the cached identity travels as base64 JSON.
type Store struct {
    c      *gin.Context
    maxAge int
}

func NewStore(c *gin.Context, maxAge time.Duration) *Store {
    return &Store{c: c, maxAge: int(maxAge.Seconds())}
}

func (s *Store) get(name string) string {
    v, err := s.c.Cookie(name)
    if err != nil { return "" }
    return v
}

func (s *Store) set(name, value string) {
    s.c.SetSameSite(http.SameSiteLaxMode)
    s.c.SetCookie(name, value, s.maxAge, "/", "", false, true)
}

func (s *Store) delete(name string) {
    s.c.SetSameSite(http.SameSiteLaxMode)
    s.c.SetCookie(name, "", -1, "/", "", false, true)
}

func (s *Store) AccessToken() string         { return s.get(accessTokenCookie) }
func (s *Store) SetAccessToken(token string) { s.set(accessTokenCookie, token) }

func (s *Store) RefreshToken() string         { return s.get(refreshTokenCookie) }
func (s *Store) SetRefreshToken(token string) { s.set(refreshTokenCookie, token) }

func (s *Store) OAuthState() string        { return s.get(oauthStateCookie) }
func (s *Store) SetOAuthState(v string)    { s.set(oauthStateCookie, v) }
func (s *Store) ClearOAuthState()          { s.delete(oauthStateCookie) }

// UserInfo returns the cached identity, or nil when absent or undecodable.
func (s *Store) UserInfo() *domain.UserInfo {
    raw := s.get(userInfoCookie)
    if raw == "" { return nil }
    dec, err := base64.StdEncoding.DecodeString(raw)
    if err != nil { return nil }
    var u domain.UserInfo
    if err := json.Unmarshal(dec, &u); err != nil { return nil }
    return &u
}

func (s *Store) SetUserInfo(u domain.UserInfo) {
    b, err := json.Marshal(u)
    if err != nil { return }
    s.set(userInfoCookie, base64.StdEncoding.EncodeToString(b))
}

func (s *Store) Clear() {
    for _, name := range []string{accessTokenCookie, refreshTokenCookie, userInfoCookie, oauthStateCookie} {
        s.delete(name)
    }
}
