package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/alephjs/aleph-compiler/internal/app_dir"
	"github.com/alephjs/aleph-compiler/internal/fetch"
	"github.com/alephjs/aleph-compiler/internal/mime"
	"github.com/alephjs/aleph-compiler/internal/storage"
	"github.com/goccy/go-json"
	"github.com/ije/esbuild-internal/xxhash"
)

type remoteModule struct {
	URL    string `json:"url"`
	Lang   string `json:"lang"`
	Source []byte `json:"-"`
}

// moduleCache caches the fetched remote modules, a module is stored as
// `<key>` (the source) and `<key>.meta` (the final url and the lang).
type moduleCache struct {
	storage storage.Storage
}

func newModuleCache() (*moduleCache, error) {
	dir, err := app_dir.GetCacheDir()
	if err != nil {
		return nil, err
	}
	fs, err := storage.NewFSStorage(dir)
	if err != nil {
		return nil, err
	}
	return &moduleCache{storage: fs}, nil
}

func cacheKey(u *url.URL) string {
	key := path.Join("modules", u.Scheme, u.Host, u.Path)
	if u.Path == "" || u.Path[len(u.Path)-1] == '/' {
		key = path.Join(key, "index")
	}
	if u.RawQuery != "" {
		h := xxhash.New()
		h.Write([]byte(u.RawQuery))
		key += fmt.Sprintf("@%x", h.Sum(nil))
	}
	return key
}

func (c *moduleCache) get(u *url.URL) (*remoteModule, error) {
	key := cacheKey(u)
	mod, err := c.readMeta(key + ".meta")
	if err != nil {
		return nil, err
	}
	r, _, err := c.storage.Get(key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	mod.Source, err = io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return mod, nil
}

func (c *moduleCache) readMeta(key string) (*remoteModule, error) {
	r, _, err := c.storage.Get(key)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var mod remoteModule
	if err := json.NewDecoder(r).Decode(&mod); err != nil {
		return nil, err
	}
	return &mod, nil
}

func (c *moduleCache) put(u *url.URL, mod *remoteModule) error {
	key := cacheKey(u)
	if err := c.storage.Put(key, bytes.NewReader(mod.Source)); err != nil {
		return err
	}
	meta, err := json.Marshal(mod)
	if err != nil {
		return err
	}
	return c.storage.Put(key+".meta", bytes.NewReader(meta))
}

// fetchRemoteModule downloads the module, the lang is detected by the
// content type and falls back to the extension of the final URL.
func fetchRemoteModule(u *url.URL) (*remoteModule, error) {
	client, recycle := fetch.NewClient("aleph-compiler/"+VERSION, 30*time.Second)
	defer recycle()

	res, err := client.FetchModule(u)
	if err != nil {
		return nil, err
	}
	lang := mime.GetLangByContentType(res.ContentType)
	if lang == "" {
		lang = mime.GetLang(res.URL)
	}
	if lang == "" {
		return nil, fmt.Errorf("fetch %s: unsupported content type %q", u, res.ContentType)
	}
	return &remoteModule{URL: res.URL, Lang: lang, Source: res.Source}, nil
}

func loadRemoteModule(rawURL string) (*remoteModule, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	cache, err := newModuleCache()
	if err != nil {
		return nil, err
	}
	return cache.load(u)
}

func (c *moduleCache) load(u *url.URL) (*remoteModule, error) {
	mod, err := c.get(u)
	if err == nil {
		return mod, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	mod, err = fetchRemoteModule(u)
	if err != nil {
		return nil, err
	}
	if err := c.put(u, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

// list returns the cached module URLs under the key prefix.
func (c *moduleCache) list(prefix string) ([]string, error) {
	keys, err := c.storage.List(prefix)
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, key := range keys {
		if !strings.HasSuffix(key, ".meta") {
			continue
		}
		mod, err := c.readMeta(key)
		if err != nil {
			return nil, err
		}
		fi, err := c.storage.Stat(strings.TrimSuffix(key, ".meta"))
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, err
		}
		urls = append(urls, fmt.Sprintf("%s (%s, %d bytes)", mod.URL, mod.Lang, fi.Size()))
	}
	return urls, nil
}

// clean deletes the cached modules under the key prefix and returns the count.
func (c *moduleCache) clean(prefix string) (int, error) {
	keys, err := c.storage.DeleteAll(prefix)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, key := range keys {
		if strings.HasSuffix(key, ".meta") {
			n++
		}
	}
	return n, nil
}
