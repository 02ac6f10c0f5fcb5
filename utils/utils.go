package utils

import "time"

// TimeLayout is the fixed display format for expirations.
const TimeLayout = "2006-01-02 15:04:05"

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

func Greeting() string {
	hour := time.Now().Hour()
	switch {
	case hour >= 5 && hour < 12:
		return "Buenos días"
	case hour >= 12 && hour < 20:
		return "Buenas tardes"
	default:
		return "Buenas noches"
	}
}
