package resolver

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ije/gox/set"
	"github.com/ije/gox/utils"
)

// the CDN origins serving react/react-dom with `/v<N>/` build pins
var cdnHosts = set.NewReadOnly("esm.sh", "cdn.esm.sh", "esm.x-static.io")

const canonicalCdnHost = "esm.sh"

var reactURLPattern = regexp.MustCompile(`^(https?)://([^/?#]+)(/v\d+)?/(react|react-dom)(@[^/?#]+)?([/?#].*)?$`)

// Resolve resolves the specifier imported by the module, returns the URL that
// should be written into the code and the canonical specifier of the dependency.
// A dependency is recorded for every call, including repeated ones.
func (ctx *Context) Resolve(specifier string, isDynamic bool) (importURL string, canonical string) {
	canonical = ctx.canonicalize(specifier)
	importURL = ctx.toImportURL(canonical)
	ctx.deps = append(ctx.deps, DependencyDescriptor{
		Index:     ctx.importCounter,
		Specifier: canonical,
		ImportURL: importURL,
		IsDynamic: isDynamic,
	})
	ctx.importCounter++
	return
}

// canonicalize applies the import map, relative resolution, the package base
// URI override and the react version pin.
func (ctx *Context) canonicalize(specifier string) string {
	mapped, ok := ctx.config.ImportMap.Resolve(ctx.specifier, specifier)
	if ok && isRelativePath(mapped) {
		mapped = ctx.joinImportMapBase(mapped)
	}

	var fixed string
	if IsRemoteURL(mapped) {
		fixed = mapped
	} else if isRelativePath(mapped) || strings.HasPrefix(mapped, "/") {
		fixed = ctx.join(mapped)
	} else {
		// bare specifiers and non-http schemes are kept as they are
		return mapped
	}

	if base := ctx.config.PackageBaseURI; base != "" {
		fixed = replacePackageBaseURI(fixed, base)
	}
	if ctx.config.ReactVersion != "" || ctx.config.CdnBuildVersion > 0 {
		fixed = pinReactURL(fixed, ctx.config.ReactVersion, ctx.config.CdnBuildVersion)
	}
	return fixed
}

// toImportURL applies the dev flag, the css module flag, the remote proxy
// and the cache-busting version.
func (ctx *Context) toImportURL(canonical string) string {
	importURL := canonical
	isRemote := IsRemoteURL(canonical)
	if !isRemote && !strings.HasPrefix(canonical, "/") {
		return importURL
	}

	var host string
	if isRemote {
		if u, err := url.Parse(canonical); err == nil {
			host = u.Hostname()
		}
	}
	isCdn := host != "" && cdnHosts.Has(host)

	if ctx.config.IsDev && isCdn && !hasQueryKey(importURL, "dev") {
		importURL = appendQuery(importURL, "dev")
	}

	if isStyleURL(canonical, isCdn) && !hasQueryKey(importURL, "module") {
		importURL = appendQuery(importURL, "module")
	}

	if isRemote {
		if ctx.config.ProxyRemote {
			importURL = toProxyPath(importURL)
		}
		return importURL
	}

	if !ctx.config.BundleMode {
		version, ok := ctx.config.GraphVersions[canonical]
		if !ok {
			version = ctx.config.DefaultVersion
		}
		if version != "" {
			importURL = appendQuery(importURL, "v="+version)
		}
	}
	return importURL
}

// join resolves a relative or root-absolute path against the module specifier.
func (ctx *Context) join(p string) string {
	if ctx.specifierIsRemote {
		ref, err := url.Parse(p)
		if err != nil {
			return p
		}
		return ctx.referrerURL.ResolveReference(ref).String()
	}
	if strings.HasPrefix(p, "/") {
		return cleanPathKeepQuery(p)
	}
	return cleanPathKeepQuery(path.Dir(ctx.specifier) + "/" + p)
}

// joinImportMapBase resolves a relative import map value against the location
// of the import map.
func (ctx *Context) joinImportMapBase(p string) string {
	base := "/"
	if im := ctx.config.ImportMap; im != nil && im.Src != "" {
		base = im.Src
	}
	if IsRemoteURL(base) {
		baseURL, err := url.Parse(base)
		if err != nil {
			return p
		}
		ref, err := url.Parse(p)
		if err != nil {
			return p
		}
		return baseURL.ResolveReference(ref).String()
	}
	dir := base
	if !strings.HasSuffix(dir, "/") {
		dir = path.Dir(dir)
	}
	return cleanPathKeepQuery(strings.TrimSuffix(dir, "/") + "/" + p)
}

// RelativeJoin joins the relative path p to the directory of the referrer path
// and normalizes the `.` and `..` segments.
func RelativeJoin(referrer string, p string) string {
	return cleanPathKeepQuery(path.Dir(referrer) + "/" + p)
}

func cleanPathKeepQuery(p string) string {
	pathname, query := utils.SplitByFirstByte(p, '?')
	// a trailing slash is kept, `./lib/` stays a directory URL
	pathname = utils.NormalizePathname(pathname)
	if query != "" {
		return pathname + "?" + query
	}
	return pathname
}

func replacePackageBaseURI(specifier string, base string) string {
	if !strings.HasPrefix(specifier, DefaultPackageBaseURI) {
		return specifier
	}
	rest := specifier[len(DefaultPackageBaseURI):]
	if rest != "" && rest[0] == '@' {
		// strip the version, e.g. `https://deno.land/x/aleph@v0.3.0/framework/core/hmr.ts`
		i := strings.IndexByte(rest, '/')
		if i < 0 {
			return specifier
		}
		rest = rest[i:]
	} else if rest != "" && rest[0] != '/' {
		// a different package like `https://deno.land/x/alephx/mod.ts`
		return specifier
	}
	return strings.TrimSuffix(base, "/") + rest
}

// pinReactURL rewrites the build version and the package version of a react
// or react-dom CDN URL, only the divergent parts are changed. URLs of unknown
// hosts are moved to the canonical CDN host when they carry a package version.
func pinReactURL(specifier string, reactVersion string, buildVersion int) string {
	m := reactURLPattern.FindStringSubmatch(specifier)
	if m == nil {
		return specifier
	}
	scheme, host, build, pkgName, version, rest := m[1], m[2], m[3], m[4], m[5], m[6]
	known := cdnHosts.Has(host)
	if !known && version == "" && build == "" {
		return specifier
	}
	changed := false
	if !known {
		scheme = "https"
		host = canonicalCdnHost
		changed = true
	}
	if buildVersion > 0 {
		if pin := "/v" + strconv.Itoa(buildVersion); build != pin {
			build = pin
			changed = true
		}
	}
	if reactVersion != "" && !sameVersion(strings.TrimPrefix(version, "@"), reactVersion) {
		version = "@" + reactVersion
		changed = true
	}
	if !changed {
		return specifier
	}
	return scheme + "://" + host + build + "/" + pkgName + version + rest
}

func sameVersion(a string, b string) bool {
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	va, err := semver.StrictNewVersion(strings.TrimPrefix(a, "v"))
	if err != nil {
		return false
	}
	vb, err := semver.StrictNewVersion(strings.TrimPrefix(b, "v"))
	if err != nil {
		return false
	}
	return va.Equal(vb)
}

func isStyleURL(specifier string, isCdn bool) bool {
	pathname, query := utils.SplitByFirstByte(specifier, '?')
	switch path.Ext(pathname) {
	case ".css", ".pcss", ".postcss":
		return true
	}
	return isCdn && query != "" && hasQueryKey(specifier, "css")
}

func toProxyPath(specifier string) string {
	u, err := url.Parse(specifier)
	if err != nil {
		return specifier
	}
	host := u.Hostname()
	if port := u.Port(); port != "" && !(u.Scheme == "http" && port == "80") && !(u.Scheme == "https" && port == "443") {
		host += "_" + port
	}
	p := "/-/" + host + u.EscapedPath()
	if u.RawQuery != "" {
		p += "?" + u.RawQuery
	}
	return p
}

// IsRemoteURL returns true if the specifier is a http(s) URL.
func IsRemoteURL(specifier string) bool {
	return strings.HasPrefix(specifier, "https://") || strings.HasPrefix(specifier, "http://")
}

func isRelativePath(specifier string) bool {
	return specifier == "." || specifier == ".." || strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

func hasQueryKey(specifier string, key string) bool {
	_, query := utils.SplitByFirstByte(specifier, '?')
	if query == "" {
		return false
	}
	query, _ = utils.SplitByFirstByte(query, '#')
	for _, pair := range strings.Split(query, "&") {
		k, _ := utils.SplitByFirstByte(pair, '=')
		if k == key {
			return true
		}
	}
	return false
}

func appendQuery(specifier string, kv string) string {
	if strings.ContainsRune(specifier, '?') {
		return specifier + "&" + kv
	}
	return specifier + "?" + kv
}
