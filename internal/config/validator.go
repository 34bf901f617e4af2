// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// defaults the unmarshalled Koanf tree into a `Config` instance.  Any tag
// mismatch or validation error aborts the procedure, ensuring the bootstrap
// never runs with partial or malformed configuration.
//
// Shape rules only live here (`required` on defaulted sections,
// `hostname_port` on the server address, `gte=0` on step retries).  The
// secret-key gate is deliberately NOT a validator rule: it must fire as an
// explicit, unconditional first step with its own diagnostic, before any
// expensive work.

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
