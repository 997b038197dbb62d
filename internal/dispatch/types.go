// Package dispatch implements the external façade (C7): a request document
// naming one action and an argument object per test case is turned into a
// response document naming one result (or error) per test case. The
// dispatcher is a thin adapter over the pure core packages; it is the only
// layer in this module that logs (via zap) or touches JSON.
//
// Reference: kauma.py, actions/*.py in the original kauma source.
package dispatch

import "encoding/json"

// Request is the top-level request document: a mapping from test-id
// strings to named actions with their arguments.
type Request struct {
	Testcases map[string]TestCase `json:"testcases"`
}

// TestCase names one action and its raw argument object; decoding of the
// arguments is deferred to the action's own handler since each action has a
// different argument shape.
type TestCase struct {
	Action    string          `json:"action"`
	Arguments json.RawMessage `json:"arguments"`
}

// Response is the top-level response document.
type Response struct {
	Responses map[string]interface{} `json:"responses"`
}

// errorResult is what an action handler's failure renders as in the
// response document, per spec.md §7's tagged-failure propagation policy.
type errorResult struct {
	Error string `json:"error"`
}
