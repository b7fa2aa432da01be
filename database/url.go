package database

import (
	"net/url"
	"strings"
)

const defaultSSLMode = "disable"

// ConstructDatabaseURL points baseURL at databaseName. Any path already on the base
// URL is replaced, query parameters are kept, and sslmode defaults to disable.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		// Not a URL form pgx understands as such; leave the rest to pgxpool.ParseConfig
		return strings.TrimRight(baseURL, "/") + "/" + databaseName
	}

	u.Path = "/" + databaseName
	u.RawPath = ""

	query := u.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", defaultSSLMode)
	}
	u.RawQuery = query.Encode()

	return u.String()
}
