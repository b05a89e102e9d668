package utils

import (
	"net/url"
	"strings"
)

// NormalizeDropboxURL turns a Dropbox share link into a direct link that can
// be used as an image source. Other URLs are returned unchanged.
func NormalizeDropboxURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}
	host := strings.ToLower(u.Host)
	if host != "dropbox.com" && host != "www.dropbox.com" {
		return raw
	}

	q := u.Query()
	q.Del("dl")
	q.Set("raw", "1")
	u.RawQuery = q.Encode()
	return u.String()
}
