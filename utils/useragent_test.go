package utils

import "testing"

func TestClassifyUserAgent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		ua         string
		deviceType string
		browser    string
		os         string
	}{
		{
			name:       "chrome on mac desktop",
			ua:         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			deviceType: "desktop",
			browser:    "Chrome",
			os:         "macOS",
		},
		{
			name:       "edge wins over chrome token",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
			deviceType: "desktop",
			browser:    "Edge",
			os:         "Windows",
		},
		{
			name:       "safari on iphone is mobile",
			ua:         "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1",
			deviceType: "mobile",
			browser:    "Safari",
			os:         "iOS",
		},
		{
			name:       "ipad is tablet",
			ua:         "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1",
			deviceType: "tablet",
			browser:    "Safari",
			os:         "iOS",
		},
		{
			name:       "android chrome is mobile and android beats linux",
			ua:         "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36",
			deviceType: "mobile",
			browser:    "Chrome",
			os:         "Android",
		},
		{
			name:       "firefox on linux",
			ua:         "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
			deviceType: "desktop",
			browser:    "Firefox",
			os:         "Linux",
		},
		{
			name:       "opera identified by opr token",
			ua:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 OPR/105.0.0.0",
			deviceType: "desktop",
			browser:    "Opera",
			os:         "Windows",
		},
		{
			name:       "old internet explorer",
			ua:         "Mozilla/5.0 (Windows NT 6.1; Trident/7.0; rv:11.0) like Gecko",
			deviceType: "desktop",
			browser:    "Internet Explorer",
			os:         "Windows",
		},
		{
			name:       "empty string is unknown desktop",
			ua:         "",
			deviceType: "desktop",
			browser:    "Unknown",
			os:         "Unknown",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyUserAgent(tt.ua)
			if got.DeviceType != tt.deviceType {
				t.Errorf("DeviceType = %q, want %q", got.DeviceType, tt.deviceType)
			}
			if got.Browser != tt.browser {
				t.Errorf("Browser = %q, want %q", got.Browser, tt.browser)
			}
			if got.OS != tt.os {
				t.Errorf("OS = %q, want %q", got.OS, tt.os)
			}
		})
	}
}

func TestClassifyUserAgentDeterministic(t *testing.T) {
	t.Parallel()
	ua := "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0.0.0 Edg/120.0.0.0"
	first := ClassifyUserAgent(ua)
	for i := 0; i < 10; i++ {
		if got := ClassifyUserAgent(ua); got != first {
			t.Fatalf("classification changed between calls: %+v vs %+v", got, first)
		}
	}
	if first.Browser != "Edge" {
		t.Fatalf("agent with both edg and chrome tokens classified as %q, want Edge", first.Browser)
	}
}
