package env

import (
	"os"
)

// PodName is the k8s pod name from PODNAME, or the hostname when unset.
// Example: k8ssta-marketengine-api-6868d88fbd-bz8zv
func PodName() string {
	if name := os.Getenv("PODNAME"); name != "" {
		return name
	}
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}
