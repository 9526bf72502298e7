package keys

import (
	"strings"
)

const (
	// PfxRegistryToken is used for prefixing cached registry tokens
	PfxRegistryToken = "registryToken"
	// PfxRegistryRoyalty is used for prefixing cached royalty configs
	PfxRegistryRoyalty = "registryRoyalty"
	// PfxHttpCache is used for prefixing cached http responses
	PfxHttpCache = "httpCacheMiddleware"
)

// CustomKey is used to join the customized key by componets with specified delimiter
func CustomKey(delimiter string, components ...string) string {
	return strings.Join(components, delimiter)
}

// RedisKey is used to join the redis key by componets
func RedisKey(components ...string) string {
	return CustomKey(":", components...)
}
