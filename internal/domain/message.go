package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// mentionPattern matches Slack user mentions like <@U0123AB> or <@U0123AB|name>.
var mentionPattern = regexp.MustCompile(`^<@([A-Z0-9]+)(?:\|[^>]*)?>$`)

// ParseUserMention extracts the user ID from a Slack mention token.
// Returns "" when s is not a mention.
func ParseUserMention(s string) string {
	m := mentionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	return m[1]
}

// permalinkTSPattern captures the microsecond timestamp at the end of a
// message permalink ("/p1727628271123456", optionally followed by a query).
var permalinkTSPattern = regexp.MustCompile(`/p(\d{16})(?:\?.*)?$`)

// PermalinkTS returns the event-style timestamp ("1727628271.123456")
// embedded in a message permalink, or an error if the link has no
// timestamp component.
func PermalinkTS(link string) (string, error) {
	m := permalinkTSPattern.FindStringSubmatch(link)
	if m == nil {
		return "", fmt.Errorf("no message timestamp in permalink %q", link)
	}
	return m[1][:10] + "." + m[1][10:], nil
}

// PermalinkTime returns the message time embedded in a permalink.
func PermalinkTime(link string) (time.Time, error) {
	ts, err := PermalinkTS(link)
	if err != nil {
		return time.Time{}, err
	}
	return ParseMessageTS(ts)
}

// ParseMessageTS converts a Slack message timestamp ("1727628271.123456")
// to a time.Time.
func ParseMessageTS(ts string) (time.Time, error) {
	sec, frac, ok := strings.Cut(ts, ".")
	if !ok {
		frac = "0"
	}
	secs, err := strconv.ParseInt(sec, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse message timestamp %q: %w", ts, err)
	}
	micros, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse message timestamp %q: %w", ts, err)
	}
	return time.Unix(secs, micros*int64(time.Microsecond)), nil
}

// SameMessage reports whether a message permalink and an event timestamp
// refer to the same message. Used to restrict ratings to the original
// submission message rather than later links to the same track.
func SameMessage(link, eventTS string) bool {
	ts, err := PermalinkTS(link)
	if err != nil {
		return false
	}
	return ts == eventTS
}
