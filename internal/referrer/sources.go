package referrer

// sources maps a referring hostname to a human-readable source name. Keys
// are matched exactly (never as a substring) by ParseSource — short
// tokens like "t.co" would otherwise false-match inside unrelated hosts
// such as "reddit.com" (spec §4.3).
var sources = map[string]string{
	"google.com":         "Google",
	"www.google.com":     "Google",
	"bing.com":           "Bing",
	"www.bing.com":       "Bing",
	"yahoo.com":          "Yahoo",
	"search.yahoo.com":   "Yahoo",
	"duckduckgo.com":     "DuckDuckGo",
	"t.co":               "Twitter",
	"twitter.com":        "Twitter",
	"x.com":              "Twitter",
	"facebook.com":       "Facebook",
	"m.facebook.com":     "Facebook",
	"l.facebook.com":     "Facebook",
	"lm.facebook.com":    "Facebook",
	"instagram.com":      "Instagram",
	"l.instagram.com":    "Instagram",
	"linkedin.com":       "LinkedIn",
	"lnkd.in":            "LinkedIn",
	"reddit.com":         "Reddit",
	"old.reddit.com":     "Reddit",
	"out.reddit.com":     "Reddit",
	"news.ycombinator.com": "Hacker News",
	"github.com":         "GitHub",
	"youtube.com":         "YouTube",
	"pinterest.com":      "Pinterest",
	"mail.google.com":    "Gmail",
	"mail.yahoo.com":     "Yahoo Mail",
	"outlook.live.com":   "Outlook",
	"slack.com":          "Slack",
	"discord.com":        "Discord",
	"telegram.org":       "Telegram",
	"t.me":               "Telegram",
	"baidu.com":          "Baidu",
	"yandex.ru":          "Yandex",
	"ecosia.org":         "Ecosia",
}

var favicons = map[string]string{
	"Google":      "google.com",
	"Bing":        "bing.com",
	"Yahoo":       "yahoo.com",
	"DuckDuckGo":  "duckduckgo.com",
	"Twitter":     "twitter.com",
	"Facebook":    "facebook.com",
	"Instagram":   "instagram.com",
	"LinkedIn":    "linkedin.com",
	"Reddit":      "reddit.com",
	"Hacker News": "news.ycombinator.com",
	"GitHub":      "github.com",
	"YouTube":     "youtube.com",
	"Pinterest":   "pinterest.com",
}

// Favicon returns the domain whose favicon best represents source, or
// the empty string if source is unrecognized.
func Favicon(source string) string {
	return favicons[source]
}
