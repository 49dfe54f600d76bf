package partition

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultFetchTimeout = 30 * time.Second

// fetched is the outcome of a URL source: body, the response
// Content-Type, and any Last-Modified header already reformatted for
// element metadata.
type fetched struct {
	data         []byte
	contentType  string
	lastModified string
}

// fetchURL performs a single GET with the caller's headers. No retries:
// a failed fetch surfaces immediately so the caller decides what to do.
func fetchURL(url string, headers map[string]string, timeout time.Duration) (*fetched, error) {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	client := resty.New().SetTimeout(timeout)

	resp, err := client.R().SetHeaders(headers).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, configErrorf("url %q returned status %d", url, resp.StatusCode())
	}

	f := &fetched{
		data:        resp.Body(),
		contentType: resp.Header().Get("Content-Type"),
	}
	if lm := resp.Header().Get("Last-Modified"); lm != "" {
		if t, err := time.Parse(time.RFC1123, lm); err == nil {
			f.lastModified = t.Format(timestampLayout)
		}
	}
	return f, nil
}

func isHTMLContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml")
}

func isTextContentType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "text/") || isHTMLContentType(ct)
}
