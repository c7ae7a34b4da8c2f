package main

import (
	"fmt"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid ID %q", arg)
	}
	return id, nil
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", value)
	}
	return &parsed, nil
}

func formatAssignee(assignee *string) string {
	if assignee == nil {
		return "-"
	}
	if *assignee == "" {
		return `""`
	}
	return *assignee
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04")
}

func formatTimePtr(value *time.Time) string {
	if value == nil {
		return "-"
	}
	return formatTime(*value)
}

func formatOptional(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
