package utils

// IsValidInterval whitelists the ClickHouse toStartOfX bucket names the
// stats queries interpolate into SQL.
func IsValidInterval(interval string) bool {
	switch interval {
	case "Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year":
		return true
	default:
		return false
	}
}
