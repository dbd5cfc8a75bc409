/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sudhi001/jira-worklog-summary/internal/adapters/jira"
    "github.com/sudhi001/jira-worklog-summary/internal/auth"
    "github.com/sudhi001/jira-worklog-summary/internal/config"
    "github.com/sudhi001/jira-worklog-summary/internal/domain"
    httpapi "github.com/sudhi001/jira-worklog-summary/internal/http"
    "github.com/sudhi001/jira-worklog-summary/internal/logger"
    "github.com/sudhi001/jira-worklog-summary/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)

    oauth := auth.New(cfg, log)

    clients := func(p domain.Principal) services.JiraClient {
        return jira.NewClient(cfg, log, p.AccessToken, p.CloudID)
    }
    svc := services.New(cfg, log, clients, oauth)

    router := httpapi.NewRouter(cfg, log, svc, oauth)

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()
    log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
