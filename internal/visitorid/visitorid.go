// Package visitorid derives the privacy-preserving, daily-rotating visitor
// identifier from a client's IP address and User-Agent string (spec §3.3,
// §4.1). The raw IP must never be retained past this call.
package visitorid

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

const saltKey = "mallard-metrics-salt"

// Deriver holds the process-wide secret and memoizes the daily salt so
// repeated derivations within the same UTC day skip the outer HMAC.
type Deriver struct {
	secret string

	mu        sync.RWMutex
	saltDate  string
	saltBytes []byte
}

// New returns a Deriver bound to secret, the process-wide value loaded once
// at startup (spec §4.1). secret is never logged.
func New(secret string) *Deriver {
	return &Deriver{secret: secret}
}

// Derive computes the 32-byte (64 hex char) visitor ID for ip and
// userAgent as of date (the UTC calendar day). Determinism within a day,
// independence across days, and non-reversibility without the secret all
// follow directly from HMAC-SHA256's properties (P1-P3).
func (d *Deriver) Derive(ip, userAgent string, date time.Time) string {
	salt := d.dailySalt(date.UTC().Format("2006-01-02"))
	mac := hmac.New(sha256.New, salt)
	mac.Write([]byte(ip))
	mac.Write([]byte("|"))
	mac.Write([]byte(userAgent))
	return hex.EncodeToString(mac.Sum(nil))
}

func (d *Deriver) dailySalt(dateStr string) []byte {
	d.mu.RLock()
	if d.saltDate == dateStr {
		salt := d.saltBytes
		d.mu.RUnlock()
		return salt
	}
	d.mu.RUnlock()

	mac := hmac.New(sha256.New, []byte(saltKey))
	mac.Write([]byte(d.secret))
	mac.Write([]byte(":"))
	mac.Write([]byte(dateStr))
	salt := mac.Sum(nil)

	d.mu.Lock()
	d.saltDate = dateStr
	d.saltBytes = salt
	d.mu.Unlock()
	return salt
}
