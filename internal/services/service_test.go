package services

import (
    "context"
    "testing"

    "github.com/rs/zerolog"

    "github.com/sudhi001/jira-worklog-summary/internal/adapters/jira"
    "github.com/sudhi001/jira-worklog-summary/internal/config"
    "github.com/sudhi001/jira-worklog-summary/internal/domain"
    "github.com/sudhi001/jira-worklog-summary/internal/errs"
)

type fakeJira struct {
    issues       []jira.Issue
    worklogs     map[string][]jira.Worklog
    worklogErrs  map[string]error
    searchErr    error
    searchCalls  int
    worklogCalls int
}

func (f *fakeJira) SearchWorklogIssues(ctx context.Context, accountID string) ([]jira.Issue, error) {
    f.searchCalls++
    if f.searchErr != nil { return nil, f.searchErr }
    return f.issues, nil
}

func (f *fakeJira) GetIssueWorklogs(ctx context.Context, issueKey string) ([]jira.Worklog, error) {
    f.worklogCalls++
    if err, ok := f.worklogErrs[issueKey]; ok { return nil, err }
    return f.worklogs[issueKey], nil
}

func newTestService(t *testing.T) *Service {
    t.Helper()
    return New(config.Config{}, zerolog.Nop(), nil, nil)
}

func issue(key, summary string) jira.Issue {
    return jira.Issue{Key: key, Fields: jira.IssueFields{
        Summary:  summary,
        Reporter: domain.UserRef{AccountID: "reporter-1", DisplayName: "Reporter One"},
    }}
}

func wl(id, author, started string, seconds int) jira.Worklog {
    return jira.Worklog{ID: id, Author: domain.UserRef{AccountID: author}, Started: started, TimeSpentSeconds: seconds}
}

func TestFetchSummary_DateBoundariesInclusive(t *testing.T) {
    jc := &fakeJira{
        issues: []jira.Issue{issue("PROJ-1", "boundary issue")},
        worklogs: map[string][]jira.Worklog{
            "PROJ-1": {
                wl("1", "me", "2026-03-01T09:00:00.000+0000", 3600), // on startDate
                wl("2", "me", "2026-03-05T09:00:00.000+0000", 1800), // on endDate
                wl("3", "me", "2026-02-28T09:00:00.000+0000", 900),  // one day before
                wl("4", "me", "2026-03-06T09:00:00.000+0000", 900),  // one day after
            },
        },
    }
    s := newTestService(t)
    out, err := s.fetchSummary(context.Background(), jc, "me", "2026-03-01", "2026-03-05")
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if len(out) != 2 {
        t.Fatalf("expected 2 days, got %d: %#v", len(out), out)
    }
    if out[0].WorkDate != "2026-03-01" || out[1].WorkDate != "2026-03-05" {
        t.Fatalf("unexpected dates: %q %q", out[0].WorkDate, out[1].WorkDate)
    }
}

func TestFetchSummary_FiltersOtherAuthors(t *testing.T) {
    jc := &fakeJira{
        issues: []jira.Issue{issue("PROJ-1", "shared issue")},
        worklogs: map[string][]jira.Worklog{
            "PROJ-1": {
                wl("1", "me", "2026-03-02T09:00:00.000+0000", 3600),
                wl("2", "someone-else", "2026-03-02T10:00:00.000+0000", 7200),
            },
        },
    }
    s := newTestService(t)
    out, err := s.fetchSummary(context.Background(), jc, "me", "2026-03-01", "2026-03-05")
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if len(out) != 1 || len(out[0].Issues) != 1 {
        t.Fatalf("unexpected shape: %#v", out)
    }
    ib := out[0].Issues[0]
    if len(ib.Worklogs) != 1 || ib.Worklogs[0].WorklogID != "1" {
        t.Fatalf("foreign author leaked into bucket: %#v", ib.Worklogs)
    }
    if ib.WorklogSummary.TotalTimeSpentSeconds != 3600 {
        t.Fatalf("total should only count own worklogs, got %d", ib.WorklogSummary.TotalTimeSpentSeconds)
    }
}

func TestFetchSummary_TotalsMatchContainedEntries(t *testing.T) {
    jc := &fakeJira{
        issues: []jira.Issue{issue("PROJ-1", "a"), issue("PROJ-2", "b")},
        worklogs: map[string][]jira.Worklog{
            "PROJ-1": {
                wl("1", "me", "2026-03-02T09:00:00.000+0000", 3600),
                wl("2", "me", "2026-03-02T13:00:00.000+0000", 1800),
            },
            "PROJ-2": {
                wl("3", "me", "2026-03-02T15:00:00.000+0000", 900),
                wl("4", "me", "2026-03-03T09:00:00.000+0000", 2700),
            },
        },
    }
    s := newTestService(t)
    out, err := s.fetchSummary(context.Background(), jc, "me", "2026-03-01", "2026-03-05")
    if err != nil { t.Fatalf("unexpected error: %v", err) }

    for _, day := range out {
        daySum := 0
        for _, ib := range day.Issues {
            issueSum := 0
            for _, w := range ib.Worklogs { issueSum += w.TimeSpentSeconds }
            if ib.WorklogSummary.TotalTimeSpentSeconds != issueSum {
                t.Fatalf("issue %s total %d != sum of entries %d", ib.IssueKey, ib.WorklogSummary.TotalTimeSpentSeconds, issueSum)
            }
            daySum += ib.WorklogSummary.TotalTimeSpentSeconds
        }
        if day.DaySummary.TotalTimeSpentSeconds != daySum {
            t.Fatalf("day %s total %d != sum of issues %d", day.WorkDate, day.DaySummary.TotalTimeSpentSeconds, daySum)
        }
    }
    if out[0].DaySummary.TotalTimeSpentFormatted != "1h 45m" {
        t.Fatalf("day total format: %q", out[0].DaySummary.TotalTimeSpentFormatted)
    }
}

func TestFetchSummary_DaysSortedIssuesFirstSeen(t *testing.T) {
    // Worklogs arrive newest-day-first; PROJ-9 shows up before PROJ-2 on the
    // shared day because the search returned it first.
    jc := &fakeJira{
        issues: []jira.Issue{issue("PROJ-9", "ninth"), issue("PROJ-2", "second")},
        worklogs: map[string][]jira.Worklog{
            "PROJ-9": {
                wl("1", "me", "2026-03-04T09:00:00.000+0000", 600),
                wl("2", "me", "2026-03-02T09:00:00.000+0000", 600),
            },
            "PROJ-2": {
                wl("3", "me", "2026-03-02T11:00:00.000+0000", 600),
            },
        },
    }
    s := newTestService(t)
    out, err := s.fetchSummary(context.Background(), jc, "me", "2026-03-01", "2026-03-05")
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if len(out) != 2 || out[0].WorkDate != "2026-03-02" || out[1].WorkDate != "2026-03-04" {
        t.Fatalf("days not ascending: %#v", out)
    }
    day := out[0]
    if len(day.Issues) != 2 || day.Issues[0].IssueKey != "PROJ-9" || day.Issues[1].IssueKey != "PROJ-2" {
        t.Fatalf("issues not in first-seen order: %#v", day.Issues)
    }
    if day.WorkDateFormatted != "02-03-2026" {
        t.Fatalf("formatted date: %q", day.WorkDateFormatted)
    }
}

func TestFetchSummary_IssueWithNoSurvivingWorklogsDropped(t *testing.T) {
    jc := &fakeJira{
        issues: []jira.Issue{issue("PROJ-1", "kept"), issue("PROJ-2", "dropped")},
        worklogs: map[string][]jira.Worklog{
            "PROJ-1": {wl("1", "me", "2026-03-02T09:00:00.000+0000", 600)},
            "PROJ-2": {wl("2", "someone-else", "2026-03-02T09:00:00.000+0000", 600)},
        },
    }
    s := newTestService(t)
    out, err := s.fetchSummary(context.Background(), jc, "me", "2026-03-01", "2026-03-05")
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if len(out) != 1 || len(out[0].Issues) != 1 || out[0].Issues[0].IssueKey != "PROJ-1" {
        t.Fatalf("empty issue should not be emitted: %#v", out)
    }
}

func TestFetchSummary_EmptyResultIsEmptySliceNotError(t *testing.T) {
    jc := &fakeJira{issues: []jira.Issue{issue("PROJ-1", "quiet")}}
    s := newTestService(t)
    out, err := s.fetchSummary(context.Background(), jc, "me", "2026-03-01", "2026-03-05")
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if out == nil || len(out) != 0 {
        t.Fatalf("expected empty summary, got %#v", out)
    }
}

func TestFetchSummary_PartialFailureSkipsIssue(t *testing.T) {
    jc := &fakeJira{
        issues: []jira.Issue{issue("PROJ-1", "broken"), issue("PROJ-2", "healthy")},
        worklogs: map[string][]jira.Worklog{
            "PROJ-2": {wl("1", "me", "2026-03-02T09:00:00.000+0000", 600)},
        },
        worklogErrs: map[string]error{
            "PROJ-1": &errs.ExternalServiceError{Service: "jira", StatusCode: 500, Msg: "boom"},
        },
    }
    s := newTestService(t)
    out, err := s.fetchSummary(context.Background(), jc, "me", "2026-03-01", "2026-03-05")
    if err != nil { t.Fatalf("partial failure must not fail the request: %v", err) }
    if len(out) != 1 || out[0].Issues[0].IssueKey != "PROJ-2" {
        t.Fatalf("expected only the surviving issue: %#v", out)
    }
}

func TestFetchSummary_SearchFailureIsFatal(t *testing.T) {
    jc := &fakeJira{searchErr: &errs.ExternalServiceError{Service: "jira", StatusCode: 502, Msg: "bad gateway"}}
    s := newTestService(t)
    if _, err := s.fetchSummary(context.Background(), jc, "me", "2026-03-01", "2026-03-05"); err == nil {
        t.Fatalf("expected search failure to propagate")
    }
}
