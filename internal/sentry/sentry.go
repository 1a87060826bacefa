package sentry

import (
	"context"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	flushTimeout      = 2 * time.Second
	httpClientTimeout = 10 * time.Second
	maxBreadcrumbs    = 20
)

var (
	// /home/username, /Users/username, C:\Users\username
	homePathPattern = regexp.MustCompile(`(?i)(/home/|/Users/|C:\\Users\\)([^/\\:]+)`)
	// GitLab personal, OAuth and CI job tokens
	tokenPattern = regexp.MustCompile(`(?i)(glpat-|gloas-|glcbt-|private[_-]?token[=:]\s*|job[_-]?token[=:]\s*)([A-Za-z0-9_-]{10,})`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
)

// Init initializes the Sentry SDK with the given version.
// If SENTRY_DSN is not set, Sentry is disabled (no-op).
// Returns a cleanup function that should be deferred.
func Init(version string) func() {
	if os.Getenv("DO_NOT_TRACK") == "1" {
		return func() {}
	}

	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		return func() {}
	}

	env := os.Getenv("SENTRY_ENVIRONMENT")
	if env == "" {
		env = "production"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          "glctl@" + version,
		Environment:      env,
		ServerName:       runtime.GOOS + "-" + runtime.GOARCH,
		AttachStacktrace: true,
		SampleRate:       1.0,
		MaxBreadcrumbs:   maxBreadcrumbs,
		HTTPClient: &http.Client{
			Timeout: httpClientTimeout,
		},
		IgnoreErrors: []string{
			"context canceled",
			"signal: interrupt",
			"signal: terminated",
			"broken pipe",
			"job not found",
		},
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			if hint != nil && hint.OriginalException != nil {
				errMsg := hint.OriginalException.Error()
				if strings.Contains(errMsg, "interrupt") ||
					strings.Contains(errMsg, "context canceled") {
					return nil
				}
			}
			scrubEvent(event)
			return event
		},
		BeforeBreadcrumb: func(breadcrumb *sentry.Breadcrumb, hint *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			breadcrumb.Message = scrubPII(breadcrumb.Message)
			return breadcrumb
		},
	})
	if err != nil {
		return func() {}
	}

	return func() {
		sentry.Flush(flushTimeout)
	}
}

// CaptureError reports an error to Sentry if initialized.
// Safe to call even if Sentry is not configured.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// RecoverAndPanic recovers from a panic, reports it to Sentry,
// then re-panics so the CLI shows the panic to the user.
// It must be deferred before the cleanup returned by Init.
func RecoverAndPanic() {
	if r := recover(); r != nil {
		sentry.CurrentHub().RecoverWithContext(context.Background(), r)
		sentry.Flush(flushTimeout)
		panic(r)
	}
}

// AddBreadcrumb adds context for debugging.
func AddBreadcrumb(category, message string) {
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	})
}

// SetTag sets a tag for filtering errors.
// Values are scrubbed of PII before being set.
func SetTag(key, value string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag(key, scrubPII(value))
	})
}

// scrubPII removes usernames in paths, GitLab tokens and email addresses.
func scrubPII(s string) string {
	s = homePathPattern.ReplaceAllString(s, "${1}[user]")
	s = tokenPattern.ReplaceAllString(s, "${1}[REDACTED]")
	s = emailPattern.ReplaceAllString(s, "[email]")
	return s
}

func scrubEvent(event *sentry.Event) {
	event.Message = scrubPII(event.Message)

	for i := range event.Exception {
		event.Exception[i].Value = scrubPII(event.Exception[i].Value)
		if event.Exception[i].Stacktrace != nil {
			for j := range event.Exception[i].Stacktrace.Frames {
				frame := &event.Exception[i].Stacktrace.Frames[j]
				frame.AbsPath = scrubPII(frame.AbsPath)
				frame.Filename = scrubPII(frame.Filename)
			}
		}
	}

	for i := range event.Breadcrumbs {
		event.Breadcrumbs[i].Message = scrubPII(event.Breadcrumbs[i].Message)
	}

	for key, value := range event.Tags {
		event.Tags[key] = scrubPII(value)
	}
}
