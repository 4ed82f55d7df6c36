// Package pipeline builds a cfgpipe.Compose from a declarative YAML
// definition.
//
// A definition names the pipeline and lists its transforms. Every step is
// a mapping with a single key, the transform kind, holding that kind's
// parameters:
//
//	name: generate
//	seed: 7
//	transforms:
//	  - insert:
//	      path: model.side
//	      value: 4.0
//	  - insert:
//	      path: model.n_sides
//	      value: 6
//	  - formula:
//	      function: regular_polygon_apothem
//	      output: model.apothem
//	      inputs: [model.side, model.n_sides]
//	  - formula:
//	      function: uniform_jitter
//	      output: train.lr
//	      inputs: [train.lr, train.lr_jitter]
//	  - when:
//	      condition: "model.apothem > 3"
//	      transform:
//	        remove:
//	          paths: [model.n_sides]
//	  - save:
//	      dir: out
//	      filename: "config_${model.side}.yaml"
//	      create_dir: true
//
// Kinds and function names resolve through registries (see Kinds and
// Functions); custom entries are added with RegisterKind and
// RegisterFunction. All invalid steps of a definition are reported
// together as a *multierror.Error of *StepError values. A parameter set to
// a value of the wrong type ("decimals: two") is an invalid step wrapping
// errors.ErrType, never a silent default.
//
// Typical use:
//
//	p, err := pipeline.Load("generate.yaml", pipeline.WithSeed(42))
//	if err != nil {
//	    return err
//	}
//	out, err := p.Run(ctx, nil, cfgpipe.WithLogger(logger))
package pipeline
