package domain

type UserRef struct {
    AccountID   string `json:"accountId"`
    DisplayName string `json:"displayName"`
}

type WorklogEntry struct {
    WorklogID          string `json:"worklogId"`
    Comment            string `json:"comment"`
    TimeSpentSeconds   int    `json:"timeSpentSeconds"`
    TimeSpentFormatted string `json:"timeSpentFormatted"`
}

type TimeSpent struct {
    TotalTimeSpentSeconds   int    `json:"totalTimeSpentSeconds"`
    TotalTimeSpentFormatted string `json:"totalTimeSpentFormatted"`
}

type IssueBucket struct {
    IssueKey       string         `json:"issueKey"`
    IssueSummary   string         `json:"issueSummary"`
    ReportedBy     UserRef        `json:"reportedBy"`
    WorklogSummary TimeSpent      `json:"worklogSummary"`
    Worklogs       []WorklogEntry `json:"worklogs"`
}

type DayBucket struct {
    WorkDate          string        `json:"workDate"`
    WorkDateFormatted string        `json:"workDateFormatted"`
    DaySummary        TimeSpent     `json:"daySummary"`
    Issues            []IssueBucket `json:"issues"`
}

// Summary is ordered ascending by WorkDate, one bucket per date.
type Summary []DayBucket

// UserInfo is the identity cached in the session between requests.
type UserInfo struct {
    AccountID    string `json:"accountId"`
    DisplayName  string `json:"displayName"`
    EmailAddress string `json:"emailAddress"`
    CloudID      string `json:"cloudId"`
}

// Principal is the authenticated caller plus its current access credential.
// Credential rotation produces a new value, never mutates one in place.
type Principal struct {
    AccountID   string
    DisplayName string
    Email       string
    AccessToken string
    CloudID     string
}
