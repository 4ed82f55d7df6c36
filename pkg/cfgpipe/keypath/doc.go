/*
Package keypath resolves and mutates nested keys inside configuration maps.

# Overview

A configuration is a tree of map[string]any values. A Path is the ordered
list of keys leading from the root to one location in that tree:

	p := keypath.Parse("model.optimizer.lr") // Path{"model", "optimizer", "lr"}
	q := keypath.New("files", "train.csv")   // segments may contain dots

# Access

	v, err := keypath.Get(cfg, p)          // ErrLookup if any segment is missing
	err = keypath.Set(cfg, p, 0.01)        // creates missing parents
	err = keypath.SetExisting(cfg, p, 0.1) // parents must already exist
	old, err := keypath.Remove(cfg, p)     // empty parents are kept

Every failure carries a kind from the cfgpipe errors package: a missing
segment is a lookup error, descending into a scalar is a type error.

# Conversion

Decoders do not always produce map[string]any for nested documents.
Normalize converts any mapping shape (map[any]any, map[string]string, ...)
recursively into map[string]any and []any so the accessors can traverse it.
Clone returns an independent deep copy and Flatten a dotted leaf view.
*/
package keypath
