// Package fleet models the repositories and recipes that make up a fleet.
//
// RepositoryRecord and Recipe values are read from a YAML fleet file by
// LoadConfiguration, validated as a whole, and treated as immutable afterwards
// apart from the base directory assigned once during loading. Configuration
// also supports persisting a fleet back to disk for discovery-driven
// initialization.
package fleet
