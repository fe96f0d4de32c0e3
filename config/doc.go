// Package config loads the orthomerge stage configuration.
//
// Configuration is assembled in layers:
//
//  1. Default() values
//  2. each file added with AddLayer, in order (.json, .yaml or .yml)
//  3. ORTHOMERGE_* environment variables
//  4. Config.Validate
//
// Every file layer is checked against an embedded JSON schema before it is
// merged, so unknown keys and out-of-range values are reported with the file
// name. Layers override only the keys they contain.
//
//	loader := config.NewLoader()
//	loader.AddLayer("orthomerge.yaml")
//	cfg, err := loader.Load()
//
// Durations accept Go duration strings plus a trailing "d" for days.
package config
