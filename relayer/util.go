package relayer

import (
	"net/url"
	"path"
	"strings"
)

func urlJoin(baseURL string, segments ...string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		panic(err)
	}
	u.Path = path.Join(append([]string{u.Path}, segments...)...)
	return u.String()
}

// ensureHexPrefix normalizes a hex string to carry the 0x marker, leaving
// already-prefixed input untouched.
func ensureHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}
