// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts startup, ensuring the binary never
// runs without the commerce platform credentials it cannot function
// without.
//
// The same validator instance backs the request-payload validation in
// internal/api, so rules registered here apply everywhere.
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}

// Validator exposes the shared instance for request-payload validation.
func Validator() *validator.Validate { return v }
