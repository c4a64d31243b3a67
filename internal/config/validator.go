// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// loader.go calls validateStruct right after unmarshalling the merged tree.
// Any failure aborts startup so the binary never runs half-configured.
// Cross-field rules that tags cannot express live in checkRules.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	return checkRules(c)
}

func checkRules(c *Config) error {
	if n := strings.Count(c.Database.DSN, "%s"); n > 1 {
		return fmt.Errorf("config: database.dsn has %d %%s verbs, want at most one", n)
	}
	if strings.Contains(c.Database.DSN, "%s") && c.Database.Password == "" {
		return fmt.Errorf("config: database.dsn expects a password but database.password is empty")
	}
	for _, h := range c.HTTP.PrimaryHosts {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("config: http.primary_hosts contains an empty host")
		}
	}
	return nil
}
