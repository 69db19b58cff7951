package tool

import (
	"net/http"
	"time"
)

var (
	DefaultTimeout = 30 * time.Second
	DownloadClient *http.Client
)

func init() {
	DownloadClient = NewHTTPClient()
}

// NewHTTPClient creates the HTTP client used for file downloads from the
// transport's file servers.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 2 * time.Minute,
		Transport: &http.Transport{
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
