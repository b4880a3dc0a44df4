package storage

import (
	"fmt"
	"strings"
	"time"
)

// RunFolderPath generates a consistent folder path for run artifacts.
// Format: YYYY/MM/DD/ZontemRun-YYYY-MM-DD-HH-MM-SS
func RunFolderPath(timestamp time.Time) string {
	return fmt.Sprintf("%04d/%02d/%02d/ZontemRun-%04d-%02d-%02d-%02d-%02d-%02d",
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Year(), timestamp.Month(), timestamp.Day(),
		timestamp.Hour(), timestamp.Minute(), timestamp.Second())
}

// ContentType determines the MIME content type based on file extension
func ContentType(filename string) string {
	switch {
	case strings.HasSuffix(filename, ".csv"):
		return "text/csv"
	case strings.HasSuffix(filename, ".json"):
		return "application/json"
	case strings.HasSuffix(filename, ".html"):
		return "text/html"
	case strings.HasSuffix(filename, ".png"):
		return "image/png"
	case strings.HasSuffix(filename, ".txt"):
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
