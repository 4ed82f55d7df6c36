// Package registry provides a generic thread-safe registry of named values.
//
// cfgpipe keeps two registries: transform kinds and expression function
// factories, both keyed by the names used in pipeline definition files.
// Registering a name twice is an error, so two packages cannot silently
// shadow each other's entries; use Replace to override deliberately.
//
//	kinds := registry.New[string, Builder]("transform kind")
//	kinds.MustRegister("insert", buildInsert)
//
//	build, err := kinds.Lookup("insert")
//
// Keys and Range visit entries in key order so listings are stable.
package registry
