/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "log"
    "os"
    "time"
)

type Config struct {
    AppEnv   string
    HTTPAddr string

    JiraDomain     string
    JiraAPIBaseURL string

    OAuthClientID     string
    OAuthClientSecret string
    OAuthRedirectURI  string
    OAuthAuthorizeURL string
    OAuthTokenURL     string

    // Basic-auth fallback for instances without an OAuth app.
    JiraEmail    string
    JiraAPIToken string

    HTTPTimeout   time.Duration
    SessionMaxAge time.Duration
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func Load() Config {
    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        HTTPAddr: getenv("HTTP_ADDR", ":8080"),

        JiraDomain:     getenv("JIRA_DOMAIN", ""),
        JiraAPIBaseURL: getenv("JIRA_API_BASE_URL", "https://api.atlassian.com"),

        OAuthClientID:     getenv("JIRA_OAUTH_CLIENT_ID", ""),
        OAuthClientSecret: getenv("JIRA_OAUTH_CLIENT_SECRET", ""),
        OAuthRedirectURI:  getenv("JIRA_OAUTH_REDIRECT_URI", "http://localhost:8080/auth/callback"),
        OAuthAuthorizeURL: getenv("JIRA_OAUTH_AUTHORIZE_URL", "https://auth.atlassian.com/authorize"),
        OAuthTokenURL:     getenv("JIRA_OAUTH_TOKEN_URL", "https://auth.atlassian.com/oauth/token"),

        JiraEmail:    getenv("JIRA_EMAIL", ""),
        JiraAPIToken: getenv("JIRA_API_TOKEN", ""),

        HTTPTimeout:   dur("HTTP_TIMEOUT", 30*time.Second),
        SessionMaxAge: dur("SESSION_MAX_AGE", 7*24*time.Hour),
    }

    if cfg.JiraDomain == "" {
        log.Printf("warning: JIRA_DOMAIN not set")
    }
    if (cfg.OAuthClientID == "" || cfg.OAuthClientSecret == "") && (cfg.JiraEmail == "" || cfg.JiraAPIToken == "") {
        log.Printf("warning: neither OAuth client nor JIRA_EMAIL/JIRA_API_TOKEN configured")
    }
    return cfg
}
