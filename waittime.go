package aocdata

import (
	"regexp"
	"strconv"
	"time"
)

// The puzzle service phrases its wait instructions several ways. Each
// extractor handles one grammar; extractWaitTime tries them in order and the
// first match wins, so adding a new phrasing means appending an extractor,
// not changing logic.
var waitTimeExtractors = []func(string) (time.Duration, bool){
	extractLeftToWait,   // "you have 4m 30s left to wait"
	extractWaitMinutes,  // "please wait 5 minutes before trying again"
	extractOneMinute,    // "please wait one minute before trying again"
	extractClockedValue, // bare "42s" or "7m" embedded in the text
}

var (
	reLeftToWait   = regexp.MustCompile(`(\d+)m(?:\s+(\d+)s)? left to wait`)
	reWaitMinutes  = regexp.MustCompile(`wait (\d+) minutes?`)
	reOneMinute    = regexp.MustCompile(`wait one minute`)
	reClockedValue = regexp.MustCompile(`\b(\d+)([ms])\b`)
)

// extractWaitTime parses the wait duration embedded in a (lowercased)
// submission response, if any.
func extractWaitTime(lower string) (time.Duration, bool) {
	for _, extract := range waitTimeExtractors {
		if d, ok := extract(lower); ok {
			return d, true
		}
	}
	return 0, false
}

func extractLeftToWait(lower string) (time.Duration, bool) {
	m := reLeftToWait.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	mins, _ := strconv.Atoi(m[1])
	d := time.Duration(mins) * time.Minute
	if m[2] != "" {
		secs, _ := strconv.Atoi(m[2])
		d += time.Duration(secs) * time.Second
	}
	return d, true
}

func extractWaitMinutes(lower string) (time.Duration, bool) {
	m := reWaitMinutes.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	mins, _ := strconv.Atoi(m[1])
	return time.Duration(mins) * time.Minute, true
}

func extractOneMinute(lower string) (time.Duration, bool) {
	if !reOneMinute.MatchString(lower) {
		return 0, false
	}
	return time.Minute, true
}

func extractClockedValue(lower string) (time.Duration, bool) {
	m := reClockedValue.FindStringSubmatch(lower)
	if m == nil {
		return 0, false
	}
	n, _ := strconv.Atoi(m[1])
	if m[2] == "m" {
		return time.Duration(n) * time.Minute, true
	}
	return time.Duration(n) * time.Second, true
}
