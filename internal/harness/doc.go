// Package harness provides conformance testing for filter evaluation.
//
// A scenario seeds a small property graph and runs queries against it.
// Every filter query is evaluated three ways and the ways must agree:
//
//   - translated: the relational descriptor compiled to SQL
//   - rendered: the rendered boolean expression evaluated in SQL
//   - matched: the operator tree evaluated in memory
//
// A path that has no form for a filter (for example $all in a rendered
// expression) reports itself unsupported and is skipped.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	nodes:
//	  - id: frodo
//	    labels: [Hobbit]
//	    data: { name: Frodo, age: 50 }
//	edges:
//	  - { id: e1, label: KNOWS, from: frodo, to: sam }
//	queries:
//	  - name: adults
//	    filter: { age: { $gte: 33 } }
//	    expect: [frodo]
//	  - name: friends
//	    path:
//	      start: { name: Frodo }
//	      steps: [{ label: KNOWS, direction: out }]
//	    expect: [frodo>sam]
//	  - name: typo
//	    filter: { age: { $eqq: 1 } }
//	    error: unrecognized operator
//
// # Deterministic Testing
//
// Every scenario runs in its own in-memory SQLite database, and nodes
// seeded without an ID get sequential IDs, so snapshots are reproducible.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/shire.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
