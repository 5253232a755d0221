package config

import (
	"fmt"
	"os"
	"strings"
)

// ResolveAPIKey resolves a secret (an API key or the bot password) from its
// source: "env" reads envVar, "config" uses configValue as is, and "file"
// reads the first line of the file named by configValue.
func ResolveAPIKey(source, configValue, envVar string) (string, error) {
	switch source {
	case "env", "":
		return resolveFromEnv(envVar)
	case "config":
		if configValue == "" {
			return "", fmt.Errorf("secret source is 'config' but no value provided")
		}
		return configValue, nil
	case "file":
		return resolveFromFile(configValue)
	default:
		return "", fmt.Errorf("unknown secret source: %q", source)
	}
}

func resolveFromEnv(envVar string) (string, error) {
	if envVar == "" {
		return "", fmt.Errorf("no environment variable name specified")
	}
	val := os.Getenv(envVar)
	if val == "" {
		return "", fmt.Errorf("environment variable %s is not set", envVar)
	}
	return val, nil
}

func resolveFromFile(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("secret source is 'file' but no path provided")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading secret file: %w", err)
	}
	line, _, _ := strings.Cut(string(data), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("secret file %s is empty", path)
	}
	return line, nil
}
