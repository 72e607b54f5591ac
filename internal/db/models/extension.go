// Package models - extension.go defines the Extension model: a provider attached to a
// configuration together with its stored argument values.
package models

// Extension is a configured provider instance of a configuration.
type Extension struct {
	ID                    int64   `db:"id"`
	ConfigurationID       int64   `db:"configuration_id"`
	Name                  string  `db:"name"`
	ExternalID            string  `db:"external_id"`
	Enabled               bool    `db:"enabled"`
	Values                JSONMap `db:"values"`
	ConfigurableArguments RawJSON `db:"configurable_arguments"`
	State                 JSONMap `db:"state"`
}
