// Package ua classifies a User-Agent string into browser, OS, and device
// attributes (spec §4.2), with a fastcache memoization cache since the same UA
// string recurs across many requests.
package ua

import (
	"strings"

	"github.com/VictoriaMetrics/fastcache"
)

// Agent is the parsed result of a User-Agent string.
type Agent struct {
	Browser        string
	BrowserVersion string
	OS             string
	OSVersion      string
	DeviceType     string
}

const cacheSizeBytes = 16 << 20

var cache = fastcache.New(cacheSizeBytes)

// Parse classifies ua, consulting the cache first. widthHint is the
// optional client-reported screen width (0 if unknown); it is used only as
// a device-class fallback when the UA string itself gives no signal
// (SPEC_FULL §4.2.1). The cache key folds in widthHint's device bucket so
// two requests with the same (empty or ambiguous) UA but different widths
// never collide.
func Parse(agent string, widthHint int) Agent {
	key := cacheKey(agent, widthHint)
	if v, ok := cache.HasGet(nil, key); ok {
		return decode(v)
	}
	a := parse(agent, widthHint)
	cache.Set(key, encode(a))
	return a
}

func cacheKey(agent string, widthHint int) []byte {
	bucket := byte(0)
	switch {
	case widthHint <= 0:
		bucket = 0
	case widthHint < 768:
		bucket = 1
	case widthHint < 1024:
		bucket = 2
	default:
		bucket = 3
	}
	return append([]byte(agent), 0, bucket)
}

func parse(agent string, widthHint int) Agent {
	return Agent{
		Browser:        detectBrowser(agent),
		BrowserVersion: detectBrowserVersion(agent),
		OS:             detectOS(agent),
		OSVersion:      detectOSVersion(agent),
		DeviceType:     detectDeviceType(agent, widthHint),
	}
}

// detectBrowser checks more specific patterns first: Edge before Opera
// before Chrome (excluding Chromium) before Safari (excluding Chrome)
// before Firefox (spec §4.2).
func detectBrowser(ua string) string {
	switch {
	case strings.Contains(ua, "Edg/") || strings.Contains(ua, "Edge/"):
		return "Edge"
	case strings.Contains(ua, "OPR/") || strings.Contains(ua, "Opera"):
		return "Opera"
	case strings.Contains(ua, "Chrome/") && !strings.Contains(ua, "Chromium/"):
		return "Chrome"
	case strings.Contains(ua, "Safari/") && !strings.Contains(ua, "Chrome/"):
		return "Safari"
	case strings.Contains(ua, "Firefox/"):
		return "Firefox"
	default:
		return ""
	}
}

func detectBrowserVersion(ua string) string {
	prefixes := []string{"Edg/", "Edge/", "OPR/", "Chrome/", "Firefox/"}
	// Safari reports its real version after "Version/", not "Safari/".
	if strings.Contains(ua, "Safari/") && !strings.Contains(ua, "Chrome/") {
		if v := versionAfter(ua, "Version/"); v != "" {
			return v
		}
	}
	for _, p := range prefixes {
		if strings.Contains(ua, p) {
			if v := versionAfter(ua, p); v != "" {
				return v
			}
		}
	}
	return ""
}

func versionAfter(ua, prefix string) string {
	pos := strings.Index(ua, prefix)
	if pos < 0 {
		return ""
	}
	start := pos + len(prefix)
	end := start
	for end < len(ua) && (isDigit(ua[end]) || ua[end] == '.') {
		end++
	}
	return ua[start:end]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// detectOS checks iPhone/iPad/iOS before macOS: "iPhone OS .. like Mac OS X"
// contains "Mac OS X" as a substring, so checking macOS first would
// misclassify every iOS device (spec §4.2).
func detectOS(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "iPhone") || strings.Contains(ua, "iPad") || strings.Contains(ua, "iOS"):
		return "iOS"
	case strings.Contains(ua, "Mac OS X") || strings.Contains(ua, "macOS"):
		return "macOS"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "CrOS"):
		return "Chrome OS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	default:
		return ""
	}
}

func detectOSVersion(ua string) string {
	switch {
	case strings.Contains(ua, "Windows NT"):
		return versionUnderscoreAfter(ua, "Windows NT ")
	case strings.Contains(ua, "iPhone OS"):
		return strings.ReplaceAll(versionUnderscoreAfter(ua, "iPhone OS "), "_", ".")
	case strings.Contains(ua, "Mac OS X"):
		return strings.ReplaceAll(versionUnderscoreAfter(ua, "Mac OS X "), "_", ".")
	case strings.Contains(ua, "Android"):
		return versionUnderscoreAfter(ua, "Android ")
	default:
		return ""
	}
}

func versionUnderscoreAfter(ua, prefix string) string {
	pos := strings.Index(ua, prefix)
	if pos < 0 {
		return ""
	}
	start := pos + len(prefix)
	end := start
	for end < len(ua) && (isDigit(ua[end]) || ua[end] == '.' || ua[end] == '_') {
		end++
	}
	return ua[start:end]
}

// detectDeviceType classifies device class: tablet if "iPad" or "Tablet";
// mobile if "Mobile" or a phone marker; else desktop (spec §4.2). Falls
// back to the screen-width hint only when the UA gives no signal at all.
func detectDeviceType(ua string, widthHint int) string {
	switch {
	case strings.Contains(ua, "iPad") || strings.Contains(ua, "Tablet"):
		return "tablet"
	case strings.Contains(ua, "Mobile") || strings.Contains(ua, "iPhone") || strings.Contains(ua, "Android"):
		return "mobile"
	case ua != "":
		return "desktop"
	}
	switch {
	case widthHint <= 0:
		return "desktop"
	case widthHint < 768:
		return "mobile"
	case widthHint < 1024:
		return "tablet"
	default:
		return "desktop"
	}
}

// encode/decode give the cache a fixed, simple wire format: five
// length-prefixed fields. This avoids pulling in a serialization library
// for a five-string struct.
func encode(a Agent) []byte {
	fields := []string{a.Browser, a.BrowserVersion, a.OS, a.OSVersion, a.DeviceType}
	var b []byte
	for _, f := range fields {
		b = append(b, byte(len(f)), byte(len(f)>>8))
		b = append(b, f...)
	}
	return b
}

func decode(b []byte) Agent {
	var fields [5]string
	pos := 0
	for i := 0; i < 5 && pos+2 <= len(b); i++ {
		l := int(b[pos]) | int(b[pos+1])<<8
		pos += 2
		if pos+l > len(b) {
			break
		}
		fields[i] = string(b[pos : pos+l])
		pos += l
	}
	return Agent{
		Browser:        fields[0],
		BrowserVersion: fields[1],
		OS:             fields[2],
		OSVersion:      fields[3],
		DeviceType:     fields[4],
	}
}
