package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// the max size of a module source
const maxModuleSize = 10 << 20

var clientPool = sync.Pool{
	New: func() any {
		return &FetchClient{Client: &http.Client{}}
	},
}

// FetchClient is a custom HTTP client.
type FetchClient struct {
	*http.Client
	userAgent string
}

// Module is a remote module source.
type Module struct {
	// URL is the final URL after redirects
	URL         string
	ContentType string
	Source      []byte
}

// NewClient creates a new FetchClient, recycle puts the client back to the pool.
func NewClient(userAgent string, timeout time.Duration) (client *FetchClient, recycle func()) {
	client = clientPool.Get().(*FetchClient)
	client.userAgent = userAgent
	client.Timeout = timeout
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return errors.New("stopped after 5 redirects")
		}
		return nil
	}
	return client, func() { clientPool.Put(client) }
}

// Fetch sends a GET request and returns the response.
func (c *FetchClient) Fetch(url *url.URL, header http.Header) (resp *http.Response, err error) {
	if c.userAgent != "" {
		if header == nil {
			header = make(http.Header)
		}
		header.Set("User-Agent", c.userAgent)
	}
	req := &http.Request{
		Method:     "GET",
		URL:        url,
		Host:       url.Host,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     header,
	}
	return c.Do(req)
}

// FetchModule downloads the source of a remote module.
func (c *FetchClient) FetchModule(u *url.URL) (*Module, error) {
	header := make(http.Header)
	header.Set("Accept", "application/javascript, application/typescript, text/jsx, text/tsx, */*")
	resp, err := c.Fetch(u, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s: %s", u, resp.Status)
	}
	source, err := io.ReadAll(io.LimitReader(resp.Body, maxModuleSize+1))
	if err != nil {
		return nil, err
	}
	if len(source) > maxModuleSize {
		return nil, fmt.Errorf("fetch %s: module too large", u)
	}
	return &Module{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Source:      source,
	}, nil
}
