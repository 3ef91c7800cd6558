package util

import "os"

const defaultHostRegistry = "dev.registry.epsilon.local"

// GetHostRegistry returns the container image registry host, defaulting to
// the in-cluster dev registry when HOST_REGISTRY is unset.
func GetHostRegistry() string {
	if v := os.Getenv("HOST_REGISTRY"); v != "" {
		return v
	}
	return defaultHostRegistry
}

// GetHostTemplate returns the hostname of the template registry service.
func GetHostTemplate() string {
	return os.Getenv("HOST_TEMPLATE")
}
