package config

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of every recognized environment variable.
const EnvPrefix = "EDITLOG_"

// envMapping maps environment variables to config paths.
var envMapping = map[string]string{
	"EDITLOG_HISTORY_ENABLED":         "history.enabled",
	"EDITLOG_HISTORY_FLOOR_BYTES":     "history.floorBytes",
	"EDITLOG_HISTORY_LARGE_THRESHOLD": "history.largeThresholdBytes",
	"EDITLOG_HISTORY_LARGE_STEP":      "history.largeStepBytes",
	"EDITLOG_HISTORY_MAX_BYTES":       "history.maxBytes",
	"EDITLOG_HISTORY_WORD_CHARS":      "history.wordChars",
	"EDITLOG_LOG_LEVEL":               "logging.level",
	"EDITLOG_LOG_PREFIX":              "logging.prefix",
}

// stringPaths are config paths whose values are never type-converted.
var stringPaths = map[string]bool{
	"history.wordChars": true,
	"logging.level":     true,
	"logging.prefix":    true,
}

// boolPaths are config paths holding booleans; they also accept 0 and 1.
var boolPaths = map[string]bool{
	"history.enabled": true,
}

// applyEnv overlays environment variables onto cfg. The overrides are
// collected into a nested map and decoded through TOML so they get the
// same type checking as the config file.
func (l *Loader) applyEnv(cfg *Config) error {
	overrides := make(map[string]any)

	envs := make([]string, 0, len(envMapping))
	for env := range envMapping {
		envs = append(envs, env)
	}
	sort.Strings(envs)

	for _, env := range envs {
		val, ok := l.lookup(env)
		if !ok {
			continue
		}
		path := envMapping[env]
		switch {
		case stringPaths[path]:
			setByPath(overrides, path, val)
		case boolPaths[path]:
			setByPath(overrides, path, parseBool(val))
		default:
			setByPath(overrides, path, parseValue(val))
		}
	}
	if len(overrides) == 0 {
		return nil
	}

	data, err := toml.Marshal(overrides)
	if err != nil {
		return &ParseError{Path: "<env>", Message: err.Error(), Err: err}
	}
	return decode("<env>", data, cfg)
}

// parseValue converts an environment string into a bool, an int or
// leaves it as a string.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	return s
}

// parseBool converts an environment string for a boolean setting. Values
// that are not booleans are returned unchanged so decoding reports them.
func parseBool(s string) any {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// setByPath sets a value in a nested map using a dot-separated path.
func setByPath(data map[string]any, path string, value any) {
	parts := strings.Split(path, ".")
	current := data
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}
