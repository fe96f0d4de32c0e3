package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360/orthomerge/errors"
)

// DefaultEnvPrefix prefixes every environment override.
const DefaultEnvPrefix = "ORTHOMERGE"

// durationFields lists the dotted paths holding durations.
var durationFields = [][]string{
	{"search", "timeout"},
	{"aligner", "timeout"},
	{"catalog", "entrez", "timeout"},
}

// Loader handles configuration loading with layers and overrides
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		validation: true,
		envPrefix:  DefaultEnvPrefix,
		lookupEnv:  os.LookupEnv,
	}
}

// AddLayer adds a configuration file layer; later layers override earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables the final Config.Validate call.
// Schema validation of each layer always runs.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// Load applies defaults, each file layer, then environment overrides, then validates.
func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	for _, path := range l.layers {
		raw, err := l.loadRaw(path)
		if err != nil {
			return nil, err
		}
		cfg, err = mergeFromMap(cfg, raw)
		if err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", fmt.Sprintf("merge %s", path))
		}
	}

	if err := l.applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// loadRaw reads one layer into a generic map, schema-checked and with durations normalised.
func (l *Loader) loadRaw(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %s", errors.ErrMissingConfig, path),
				"config", "loadRaw", "read layer")
		}
		return nil, errors.WrapInvalid(err, "config", "loadRaw", fmt.Sprintf("read %s", path))
	}

	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
			"config", "loadRaw", fmt.Sprintf("parse %s", path))
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if err := checkDepth(raw, 0); err != nil {
		return nil, errors.WrapInvalid(err, "config", "loadRaw", fmt.Sprintf("check %s", path))
	}
	if err := validateLayer(path, raw); err != nil {
		return nil, err
	}
	if err := parseDurations(raw); err != nil {
		return nil, errors.WrapInvalid(err, "config", "loadRaw", fmt.Sprintf("parse durations in %s", path))
	}

	return raw, nil
}

// parseDurations replaces duration strings with integer nanoseconds in place.
func parseDurations(raw map[string]any) error {
	for _, field := range durationFields {
		parent := raw
		for _, key := range field[:len(field)-1] {
			next, ok := parent[key].(map[string]any)
			if !ok {
				parent = nil
				break
			}
			parent = next
		}
		if parent == nil {
			continue
		}

		leaf := field[len(field)-1]
		s, ok := parent[leaf].(string)
		if !ok {
			continue
		}
		d, err := parseDurationWithDays(s)
		if err != nil {
			return fmt.Errorf("%s: %w", strings.Join(field, "."), err)
		}
		parent[leaf] = int64(d)
	}
	return nil
}

// parseDurationWithDays extends time.ParseDuration with a trailing "d" unit.
func parseDurationWithDays(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.ParseFloat(days, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n * float64(24*time.Hour)), nil
	}
	return time.ParseDuration(s)
}

// mergeFromMap overrides only the fields present in override.
func mergeFromMap(base *Config, override map[string]any) (*Config, error) {
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, err
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return nil, err
	}

	mergedJSON, err := json.Marshal(deepMergeMaps(baseMap, override))
	if err != nil {
		return nil, err
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// deepMergeMaps recursively merges two maps, with override taking precedence
func deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base))
	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}
		if baseMap, ok := base[k].(map[string]any); ok {
			if overrideMap, ok := v.(map[string]any); ok {
				result[k] = deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}
		result[k] = v
	}

	return result
}

// applyEnvOverrides applies PREFIX_* environment variables over the loaded layers.
func (l *Loader) applyEnvOverrides(cfg *Config) error {
	str := func(name string, dst *string) {
		if v, ok := l.lookupEnv(l.envPrefix + "_" + name); ok && v != "" {
			*dst = v
		}
	}
	num := func(name string, dst *float64) error {
		v, ok := l.lookupEnv(l.envPrefix + "_" + name)
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError(l.envPrefix+"_"+name, v)
		}
		*dst = f
		return nil
	}

	str("WORK_DIR", &cfg.WorkDir)
	str("MANIFEST", &cfg.Manifest)
	str("RESULTS_FILE", &cfg.ResultsFile)
	str("EXTENSION", &cfg.Extension)
	str("MEMBER_ORDER", &cfg.MemberOrder)
	str("CATALOG_BACKEND", &cfg.Catalog.Backend)
	str("ENTREZ_API_KEY", &cfg.Catalog.Entrez.APIKey)
	str("ENTREZ_EMAIL", &cfg.Catalog.Entrez.Email)
	str("METRICS_TEXTFILE", &cfg.Metrics.Textfile)

	if err := num("OVERLAP_THRESHOLD", &cfg.OverlapThreshold); err != nil {
		return err
	}
	if err := num("MAX_DISTANCE", &cfg.MaxDistance); err != nil {
		return err
	}

	if v, ok := l.lookupEnv(l.envPrefix + "_WORKERS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError(l.envPrefix+"_WORKERS", v)
		}
		cfg.Workers = n
	}
	if v, ok := l.lookupEnv(l.envPrefix + "_NATS_URLS"); ok && v != "" {
		cfg.Catalog.KV.URLs = strings.Split(v, ",")
	}

	return nil
}

func envError(name, value string) error {
	return errors.WrapInvalid(fmt.Errorf("%w: %s=%q", errors.ErrInvalidConfig, name, value),
		"config", "applyEnvOverrides", "parse environment override")
}
