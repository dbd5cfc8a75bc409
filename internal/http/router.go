/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package http

import (
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"

    "github.com/sudhi001/jira-worklog-summary/internal/config"
)

func NewRouter(cfg config.Config, log zerolog.Logger, svc summaryService, oauth oauthProvider) *gin.Engine {
    if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(func(c *gin.Context) {
        c.Next()
        log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
    })

    h := NewHandlers(cfg, log, svc, oauth)

    r.GET("/healthz", h.Healthz)
    r.GET("/auth/login", h.Login)
    r.GET("/auth/callback", h.Callback)
    r.GET("/auth/logout", h.Logout)
    r.GET("/auth/me", h.Me)
    r.POST("/api/v1/jira-worklogs/summary", h.WorklogSummary)

    return r
}
