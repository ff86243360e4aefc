// Package harness runs conformance suites against the relation engine.
//
// A suite is a YAML file naming the CUE definition files it needs and a list
// of cases. Each case exercises one operation and states what it must
// produce.
//
// # Suite Format
//
//	name: arrays
//	description: "Array covariance and inference"
//	defs:
//	  - defs/list.cue
//	cases:
//	  - name: number array binds T
//	    extends:
//	      left: {kind: array, items: number}
//	      right: {kind: array, items: {kind: infer, name: T}}
//	      expect: "true"
//	      bindings: {T: number}
//	  - name: box of string
//	    call:
//	      target: "#Box"
//	      args: [string]
//	      expect: {kind: array, items: string}
//	  - name: box rejects number
//	    call:
//	      target: "#Box"
//	      args: [number]
//	      error: CONSTRAINT_VIOLATION
//	  - name: keyof user
//	    instantiate:
//	      node: {kind: keyof, of: "#User"}
//	      expect: {kind: union, members: [{kind: literal, const: id}]}
//	  - name: two digits
//	    pattern:
//	      text: "{0|1}{0|1}"
//	      expect: ["00", "01", "10", "11"]
//
// Descriptors are written in the kind-tagged wire shape or as a shorthand
// keyword ("string", "number", …) or "#Name" reference into the suite defs.
// Defs paths resolve relative to the suite file.
//
// # Determinism
//
// Every run uses a fresh in-memory store with sequential record ids, so a
// suite always yields the same trace. RunWithGolden compares that trace
// against testdata/golden/<name>.golden.
//
// # Usage
//
//	suite, err := harness.LoadSuite("testdata/suites/arrays.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(suite)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
