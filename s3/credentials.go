package s3

import (
	"strings"
	"sync"

	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/roy-ht/pathlibfs/core"
)

// Resolving a credential chain can hit the instance metadata service, which
// is slow enough to matter when many backends are constructed. With
// Options.CacheCredentials set, resolved chains are shared process-wide per
// distinct credential configuration.
var credCache = struct {
	sync.Mutex
	chains map[string]*credentials.Credentials
}{chains: make(map[string]*credentials.Credentials)}

func credentialsFor(opts core.Options) *credentials.Credentials {
	if !opts.CacheCredentials {
		return buildCredentials(opts)
	}

	key := strings.Join([]string{
		opts.AccessKey, opts.SecretKey, opts.SessionToken, opts.CredentialsFile,
	}, "\x00")
	if opts.Anonymous {
		key = "anon"
	}

	credCache.Lock()
	defer credCache.Unlock()
	if c, ok := credCache.chains[key]; ok {
		return c
	}
	c := buildCredentials(opts)
	credCache.chains[key] = c
	return c
}

func buildCredentials(opts core.Options) *credentials.Credentials {
	switch {
	case opts.Anonymous:
		return credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
	case opts.AccessKey != "":
		return credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, opts.SessionToken)
	default:
		return credentials.NewChainCredentials([]credentials.Provider{
			&credentials.EnvAWS{},
			&credentials.FileAWSCredentials{Filename: opts.CredentialsFile},
			&credentials.IAM{},
		})
	}
}
