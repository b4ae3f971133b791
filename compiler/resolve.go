package compiler

import (
	"github.com/alephjs/aleph-compiler/internal/resolver"
)

type ResolveResult struct {
	Specifier string `json:"specifier"`
	ImportURL string `json:"importUrl"`
	Canonical string `json:"canonical"`
}

// Resolve resolves the specifiers imported by the referrer module, the way
// Compile does for the import declarations of a module.
func Resolve(referrer string, specifiers []string, opts *Options) ([]ResolveResult, []DependencyDescriptor, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	if err := fixOptions(&o, ""); err != nil {
		return nil, nil, err
	}
	ctx, err := resolver.New(referrer, o.resolverConfig())
	if err != nil {
		return nil, nil, err
	}
	results := make([]ResolveResult, len(specifiers))
	for i, specifier := range specifiers {
		importURL, canonical := ctx.Resolve(specifier, false)
		log.Debugf("resolve(%s): %s -> %s", referrer, specifier, importURL)
		results[i] = ResolveResult{Specifier: specifier, ImportURL: importURL, Canonical: canonical}
	}
	return results, ctx.Deps(), nil
}
