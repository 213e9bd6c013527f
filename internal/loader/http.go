package loader

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"time"
)

// MaxDownloadSize is the largest response body a URLSource accepts.
const MaxDownloadSize = 8 << 20

// URLSource downloads an image over HTTP. The image is decompressed
// according to the extension of the URL path.
type URLSource struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// NewURLSource returns a new URLSource for url using the default client.
func NewURLSource(url string) *URLSource {
	return &URLSource{
		URL:     url,
		Client:  http.DefaultClient,
		Timeout: 30 * time.Second,
	}
}

// Load implements Source.
func (u *URLSource) Load() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), u.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := u.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("loader: GET %s: %s", u.URL, resp.Status)
	}
	data, err := readLimited(resp.Body, MaxDownloadSize)
	if err != nil {
		return nil, fmt.Errorf("loader: GET %s: %w", u.URL, err)
	}
	return Decompress(path.Base(req.URL.Path), data)
}

func (u *URLSource) String() string {
	return u.URL
}

// IsURL reports whether s looks like an HTTP URL rather than a path.
func IsURL(s string) bool {
	return len(s) > 7 && (s[:7] == "http://" || (len(s) > 8 && s[:8] == "https://"))
}

// Open returns the Source for s, which may be a path or an HTTP URL.
func Open(s string) Source {
	if IsURL(s) {
		return NewURLSource(s)
	}
	return NewFileSource(s)
}
