/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "sort"

    "github.com/rs/zerolog"

    "github.com/sudhi001/jira-worklog-summary/internal/adapters/jira"
    "github.com/sudhi001/jira-worklog-summary/internal/config"
    "github.com/sudhi001/jira-worklog-summary/internal/domain"
)

type JiraClient interface {
    SearchWorklogIssues(ctx context.Context, accountID string) ([]jira.Issue, error)
    GetIssueWorklogs(ctx context.Context, issueKey string) ([]jira.Worklog, error)
}

// ClientFactory builds a client bound to the principal's current credentials.
type ClientFactory func(p domain.Principal) JiraClient

type Service struct {
    cfg     config.Config
    log     zerolog.Logger
    clients ClientFactory
    tokens  TokenRefresher
}

func New(cfg config.Config, log zerolog.Logger, clients ClientFactory, tokens TokenRefresher) *Service {
    return &Service{cfg: cfg, log: log, clients: clients, tokens: tokens}
}

// fetchSummary runs the search → per-issue worklogs → aggregation pipeline
// with one client. A failed worklog fetch skips that issue; a failed search
// fails the whole request.
func (s *Service) fetchSummary(ctx context.Context, jc JiraClient, accountID, startDate, endDate string) (domain.Summary, error) {
    issues, err := jc.SearchWorklogIssues(ctx, accountID)
    if err != nil { return nil, err }

    days := map[string]*dayAccum{}
    for _, issue := range issues {
        worklogs, err := jc.GetIssueWorklogs(ctx, issue.Key)
        if err != nil {
            s.log.Warn().Err(err).Str("issue", issue.Key).Msg("worklog fetch failed, skipping issue")
            continue
        }
        for _, wl := range worklogs {
            if wl.Author.AccountID != accountID { continue }
            if len(wl.Started) < 10 { continue }
            workDate := wl.Started[:10]
            if workDate < startDate || workDate > endDate { continue }

            day := days[workDate]
            if day == nil {
                day = &dayAccum{date: workDate, issues: map[string]*issueAccum{}}
                days[workDate] = day
            }
            day.add(issue, wl)
        }
    }
    return finalize(days), nil
}

type dayAccum struct {
    date   string
    total  int
    order  []string
    issues map[string]*issueAccum
}

type issueAccum struct {
    key      string
    summary  string
    reporter domain.UserRef
    total    int
    worklogs []domain.WorklogEntry
}

func (d *dayAccum) add(issue jira.Issue, wl jira.Worklog) {
    ia := d.issues[issue.Key]
    if ia == nil {
        ia = &issueAccum{key: issue.Key, summary: issue.Fields.Summary, reporter: issue.Fields.Reporter}
        d.issues[issue.Key] = ia
        d.order = append(d.order, issue.Key)
    }
    ia.worklogs = append(ia.worklogs, domain.WorklogEntry{
        WorklogID:          wl.ID,
        Comment:            extractComment(wl.Comment),
        TimeSpentSeconds:   wl.TimeSpentSeconds,
        TimeSpentFormatted: formatSeconds(wl.TimeSpentSeconds),
    })
    ia.total += wl.TimeSpentSeconds
    d.total += wl.TimeSpentSeconds
}

// finalize formats totals once, orders days ascending, and flattens each
// day's issue map in first-seen order.
func finalize(days map[string]*dayAccum) domain.Summary {
    dates := make([]string, 0, len(days))
    for d := range days { dates = append(dates, d) }
    sort.Strings(dates)

    out := make(domain.Summary, 0, len(dates))
    for _, date := range dates {
        day := days[date]
        issues := make([]domain.IssueBucket, 0, len(day.order))
        for _, key := range day.order {
            ia := day.issues[key]
            issues = append(issues, domain.IssueBucket{
                IssueKey:     ia.key,
                IssueSummary: ia.summary,
                ReportedBy:   ia.reporter,
                WorklogSummary: domain.TimeSpent{
                    TotalTimeSpentSeconds:   ia.total,
                    TotalTimeSpentFormatted: formatSeconds(ia.total),
                },
                Worklogs: ia.worklogs,
            })
        }
        out = append(out, domain.DayBucket{
            WorkDate:          day.date,
            WorkDateFormatted: formatWorkDate(day.date),
            DaySummary: domain.TimeSpent{
                TotalTimeSpentSeconds:   day.total,
                TotalTimeSpentFormatted: formatSeconds(day.total),
            },
            Issues: issues,
        })
    }
    return out
}
