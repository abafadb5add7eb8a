// Package config defines the format-agnostic route definition model, along
// with the Loader interface implemented by format-specific adapters.
//
// The `config.Model` is the single source of truth for building the
// material registry and route graph. Concrete loaders, such as for HCL, are
// provided in separate packages.
package config
