package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Options configures backend construction. It is a closed set of fields
// rather than an open-ended parameter bag; every backend documents which
// fields it reads and ignores the rest.
type Options struct {
	// Endpoint overrides the service endpoint (host or host:port) for object
	// store backends.
	Endpoint string

	// Region is the bucket region hint for object store backends.
	Region string

	// AccessKey and SecretKey are static credentials for object store
	// backends. SessionToken augments them for temporary credentials.
	AccessKey    string
	SecretKey    string
	SessionToken string

	// Anonymous disables request signing for public buckets.
	Anonymous bool

	// DisableSSL switches object store endpoints to plain HTTP. Intended
	// for local test servers.
	DisableSSL bool

	// CredentialsFile points at a service account or shared credentials
	// file, for backends that authenticate from a file.
	CredentialsFile string

	// Project is the cloud project identifier, for backends that need one
	// to create buckets.
	Project string

	// CacheCredentials enables the process-wide credential cache for
	// backends that resolve credentials through a provider chain.
	CacheCredentials bool

	// AutoMkdir makes the local backend create missing parent directories
	// when opening a file for writing.
	AutoMkdir bool
}

// cacheKey is a stable fingerprint of the fields that distinguish one
// backend instance from another.
func (o Options) cacheKey() string {
	return strings.Join([]string{
		o.Endpoint, o.Region, o.AccessKey, o.SecretKey, o.SessionToken,
		fmt.Sprintf("%t%t%t%t", o.Anonymous, o.DisableSSL, o.CacheCredentials, o.AutoMkdir),
		o.CredentialsFile, o.Project,
	}, "\x00")
}

// Factory creates a backend instance from options.
type Factory func(opts Options) (Backend, error)

type registration struct {
	canonical string
	factory   Factory
}

var registry = struct {
	sync.Mutex
	schemes   map[string]registration
	instances map[string]Backend
}{
	schemes:   make(map[string]registration),
	instances: make(map[string]Backend),
}

// Register makes a backend factory available under one or more scheme
// aliases. The first alias is canonical: aliases of the same registration
// share one cached instance per options combination. Register panics on an
// empty alias list or a duplicate alias, mirroring database/sql.Register.
func Register(factory Factory, aliases ...string) {
	if len(aliases) == 0 {
		panic("core: Register requires at least one scheme alias")
	}
	registry.Lock()
	defer registry.Unlock()
	for _, alias := range aliases {
		if _, dup := registry.schemes[alias]; dup {
			panic("core: Register called twice for scheme " + alias)
		}
		registry.schemes[alias] = registration{canonical: aliases[0], factory: factory}
	}
}

// RegisteredProtocols returns the sorted scheme aliases currently registered.
func RegisteredProtocols() []string {
	registry.Lock()
	defer registry.Unlock()
	out := make([]string, 0, len(registry.schemes))
	for alias := range registry.schemes {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out
}

// SplitProtocol splits a URI-like string into its scheme and the remainder.
// A string without "://" has an empty scheme.
func SplitProtocol(urlpath string) (protocol, rest string) {
	if i := strings.Index(urlpath, "://"); i >= 0 {
		return urlpath[:i], urlpath[i+len("://"):]
	}
	return "", urlpath
}

// Resolve maps a URI-like string to a shared backend instance and the
// backend-relative remainder of the path. A missing scheme resolves to the
// local "file" backend. An unregistered scheme fails with
// ErrUnknownProtocol.
//
// Instances are cached per (canonical protocol, options) combination; every
// Resolve call with the same key returns the same handle.
func Resolve(urlpath string, opts Options) (Backend, string, error) {
	protocol, rest := SplitProtocol(urlpath)
	if protocol == "" {
		protocol = "file"
	}

	registry.Lock()
	defer registry.Unlock()

	reg, ok := registry.schemes[protocol]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownProtocol, protocol)
	}

	key := reg.canonical + "\x00" + opts.cacheKey()
	if backend, ok := registry.instances[key]; ok {
		return backend, rest, nil
	}

	backend, err := reg.factory(opts)
	if err != nil {
		return nil, "", fmt.Errorf("create %s backend: %w", reg.canonical, err)
	}
	registry.instances[key] = backend
	return backend, rest, nil
}

// ClearInstanceCache drops every cached backend instance. Subsequent Resolve
// calls construct fresh backends.
func ClearInstanceCache() {
	registry.Lock()
	defer registry.Unlock()
	registry.instances = make(map[string]Backend)
}
