package order

import (
	"net/url"
	"strings"
)

const DefaultHost = "wa.me"

// uriComponentEscaper undoes the escapes url.QueryEscape applies to characters
// encodeURIComponent leaves alone, and spells spaces as %20.
var uriComponentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// ContactLink returns https://<host>/<number>?text=<message>. It reports false
// when the number or message is blank.
func ContactLink(host, number, message string) (string, bool) {
	number = strings.TrimSpace(number)
	message = strings.TrimSpace(message)
	if number == "" || message == "" {
		return "", false
	}
	host = strings.Trim(strings.TrimSpace(host), "/")
	if host == "" {
		host = DefaultHost
	}
	return "https://" + host + "/" + url.PathEscape(number) + "?text=" + EncodeComponent(message), true
}

// EncodeComponent percent-encodes s the way browsers' encodeURIComponent does.
func EncodeComponent(s string) string {
	return uriComponentEscaper.Replace(url.QueryEscape(s))
}
