/*
Package config loads, encodes and reads configuration documents.

# Overview

Documents are YAML or JSON files decoded into plain nested
map[string]any values (see keypath.Normalize). Config wraps such a map and
provides typed accessors that return a default value when a key is missing
or has the wrong type. Keys are dotted paths into the nested mapping.

# Basic Usage

	cfg, err := config.FromFile("pipeline.yaml")
	if err != nil {
	    return err
	}

	seed := cfg.Int("run.seed", 0)
	out := cfg.String("output.dir", "out")
	params := cfg.Map("defaults")

# Loading and Writing

Load and Decode return the raw mapping, which is what transforms operate
on. Encode and Write serialize a mapping back, choosing YAML or JSON from
the file extension and honouring the indentation width:

	m, err := config.Load("in.json")
	err = config.Write("out.yaml", m, config.EncodeOptions{Indent: 4})

# Type Coercion

Int accepts int, int64 and whole float64 values. Float accepts float64,
int and int64. StringSlice accepts []string, []any of strings, and a
single string.

# Errors

Read and write failures wrap errors.ErrIO. Malformed documents and
unsupported extensions wrap errors.ErrValue. A document whose root is not
a mapping fails with errors.ErrType.
*/
package config
