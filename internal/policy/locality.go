package policy

import (
	"net/url"
	"strings"
)

// localHosts сравниваются точно, без нормализации регистра и без резолва DNS.
var localHosts = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
}

// IsLocalHost проверяет уже извлеченный host (без порта).
func IsLocalHost(host string) bool {
	_, ok := localHosts[host]
	return ok
}

// IsLocalURL классифицирует адрес как локальный.
// Локальным считается и адрес, из которого не удается извлечь host (относительный путь, мусор).
func IsLocalURL(raw string) bool {
	var host string
	if u, err := url.Parse(raw); err == nil {
		host = u.Hostname()
	} else {
		// net/url отвергает и адреса с читаемым host (битый %-escape в пути), берем authority вручную
		host = authorityHost(raw)
	}
	if host == "" {
		return true
	}
	return IsLocalHost(host)
}

// authorityHost вырезает host между "//" и первым из "/?#", без userinfo и порта.
func authorityHost(raw string) string {
	i := strings.Index(raw, "//")
	if i < 0 {
		return ""
	}
	// До "//" допустима только схема: "http:", "https:" или пусто
	if prefix := raw[:i]; prefix != "" && (!strings.HasSuffix(prefix, ":") || strings.ContainsAny(prefix, "/?#")) {
		return ""
	}

	authority := raw[i+2:]
	if j := strings.IndexAny(authority, "/?#"); j >= 0 {
		authority = authority[:j]
	}
	if at := strings.LastIndex(authority, "@"); at >= 0 {
		authority = authority[at+1:]
	}

	if strings.HasPrefix(authority, "[") {
		if end := strings.Index(authority, "]"); end >= 0 {
			return authority[1:end]
		}
		return authority
	}
	if colon := strings.LastIndex(authority, ":"); colon >= 0 {
		authority = authority[:colon]
	}
	return authority
}
