package utils

import "strings"

// AgentInfo is the classification of a raw User-Agent string.
type AgentInfo struct {
	DeviceType string `json:"deviceType"` // mobile | tablet | desktop
	Browser    string `json:"browser"`
	OS         string `json:"os"`
}

// ClassifyUserAgent maps a raw agent string to device type, browser and OS
// using case-insensitive substring matching. The order of the checks is the
// precedence: e.g. Edge agents also contain "chrome", so "edg" is tested
// first; Android agents also contain "linux", so "android" is tested first.
// Identical input always yields identical output.
func ClassifyUserAgent(userAgent string) AgentInfo {
	ua := strings.ToLower(userAgent)

	info := AgentInfo{
		DeviceType: "desktop",
		Browser:    "Unknown",
		OS:         "Unknown",
	}

	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		info.DeviceType = "tablet"
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "iphone") ||
		strings.Contains(ua, "android"):
		info.DeviceType = "mobile"
	}

	switch {
	case strings.Contains(ua, "edg"):
		info.Browser = "Edge"
	case strings.Contains(ua, "opr") || strings.Contains(ua, "opera"):
		info.Browser = "Opera"
	case strings.Contains(ua, "firefox"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "chrome"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "safari"):
		info.Browser = "Safari"
	case strings.Contains(ua, "msie") || strings.Contains(ua, "trident"):
		info.Browser = "Internet Explorer"
	}

	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") ||
		strings.Contains(ua, "ios"):
		info.OS = "iOS"
	case strings.Contains(ua, "mac"):
		info.OS = "macOS"
	case strings.Contains(ua, "android"):
		info.OS = "Android"
	case strings.Contains(ua, "linux"):
		info.OS = "Linux"
	}

	return info
}
