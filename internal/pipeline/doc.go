// Package pipeline executes the conversion steps in sequence.
//
// A conversion runs through four stages: collecting and parsing the input
// profiles, building the report tree, rendering the configured reports,
// and optionally recording the run in the history database. Each stage is
// a Step that receives the shared Conversion state and fills in its part.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between steps
//
// Input profiles are parsed concurrently inside the collect step with
// errgroup; the steps themselves always run in order because each one
// consumes what the previous one produced.
package pipeline
