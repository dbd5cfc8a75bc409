/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "fmt"
    "strings"
    "time"

    "github.com/sudhi001/jira-worklog-summary/internal/adapters/jira"
)

// formatSeconds renders a duration like "2h 30m". Leftover sub-minute seconds
// are truncated, never rounded.
func formatSeconds(seconds int) string {
    hours := seconds / 3600
    minutes := (seconds % 3600) / 60
    switch {
    case hours > 0 && minutes > 0:
        return fmt.Sprintf("%dh %dm", hours, minutes)
    case hours > 0:
        return fmt.Sprintf("%dh", hours)
    default:
        return fmt.Sprintf("%dm", minutes)
    }
}

// extractComment flattens a structured comment body to plain text: the text
// of every "text" node, in document order, joined with single spaces.
func extractComment(doc *jira.CommentDoc) string {
    if doc == nil { return "" }
    var texts []string
    for _, block := range doc.Content {
        for _, node := range block.Content {
            if node.Type == "text" {
                texts = append(texts, node.Text)
            }
        }
    }
    return strings.Join(texts, " ")
}

// formatWorkDate turns YYYY-MM-DD into DD-MM-YYYY for display.
func formatWorkDate(iso string) string {
    t, err := time.Parse("2006-01-02", iso)
    if err != nil { return iso }
    return t.Format("02-01-2006")
}
