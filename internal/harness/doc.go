// Package harness runs SQL conformance scenarios against the URL extension.
//
// # Scenario Format
//
// Scenarios are YAML (or CUE) files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	driver: sqlite          # optional: pin sqlite3 or sqlite
//	relations: true         # optional: needs url_query_each
//	setup:
//	  - CREATE TEMP TABLE links(href TEXT)
//	steps:
//	  - sql: SELECT name, value FROM url_query_each(?)
//	    args: ["a=1&b=2"]
//	    expect:
//	      rows: [["a", "1"], ["b", "2"]]
//	  - sql: SELECT url('https://example.com', 'port', '80')
//	    expect:
//	      error: "Unknown key: port"
//	assertions:
//	  - type: final_state
//	    table: links
//	    where: { href: "https://example.com/" }
//	    expect: { host: "example.com" }
//
// Every file is checked against an embedded CUE schema before it runs, so
// typos and misplaced fields fail at load time with a position.
//
// # Expectations
//
//   - rows: exact match of every row, in order
//   - count: number of rows
//   - error: the statement fails and the message contains the substring
//
// # Assertion Types
//
//   - final_state: queries a table and checks the single matching row
//   - same_rows: the listed steps returned identical rows
//
// # Deterministic Testing
//
// Each scenario runs in a fresh in-memory database. Results are converted to
// ir values, and golden traces use canonical JSON so they are byte-identical
// across runs and across drivers.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/query_each.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, scenario, store.DriverPure)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
