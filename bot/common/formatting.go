package common

import (
	"fmt"
	"strings"
	"time"
)

// Embed colors
const (
	ColorInfo    = 0x0099ff
	ColorSuccess = 0x00ff00
	ColorFailure = 0xff0000
)

// FormatNumber formats an amount with thousand separators
func FormatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	negative := strings.HasPrefix(str, "-")
	if negative {
		str = str[1:]
	}

	digits := len(str)
	if digits <= 3 {
		if negative {
			return "-" + str
		}
		return str
	}

	var result strings.Builder
	if negative {
		result.WriteRune('-')
	}
	for i, digit := range str {
		if i > 0 && (digits-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}

	return result.String()
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// UserMention returns a Discord mention string for a user
func UserMention(userID string) string {
	return "<@" + userID + ">"
}

// ChannelMention returns a Discord mention string for a channel
func ChannelMention(channelID string) string {
	return "<#" + channelID + ">"
}

// Truncate shortens s to at most max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
