package repository

import (
	"strings"
	"time"

	"github.com/hhbot/dispatcher/internal/shared/biztime"
)

func nowUTC() time.Time { return biztime.NowUTC() }

func joinCSV(values []string) string { return strings.Join(values, ",") }

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
