package dispatch

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"go.uber.org/zap"
)

// Dispatch runs every test case in req against the action table, logging
// one line per dispatched test case and one per error via logger, and
// assembles the response document. Unknown actions are silently omitted
// from the response, per spec.md §9's frozen ambiguous-source behavior —
// but are logged here so the silence is still observable.
//
// seed fixes the PRNG driving every gcm_crack/gfpoly_factor_edf call in this
// run, so a batch is reproducible end to end.
func Dispatch(req Request, seed int64, logger *zap.Logger) Response {
	rng := rand.New(rand.NewSource(seed))
	resp := Response{Responses: make(map[string]interface{}, len(req.Testcases))}

	for id, tc := range req.Testcases {
		handler, known := actions[tc.Action]
		if !known {
			logger.Warn("skipping unknown action", zap.String("testcase", id), zap.String("action", tc.Action))
			continue
		}

		logger.Info("dispatching testcase", zap.String("testcase", id), zap.String("action", tc.Action))
		result, err := handler(tc.Arguments, rng)
		if err != nil {
			logger.Error("testcase failed", zap.String("testcase", id), zap.String("action", tc.Action), zap.Error(err))
			resp.Responses[id] = errorResult{Error: err.Error()}
			continue
		}
		resp.Responses[id] = result
	}

	return resp
}

// Run reads a request document from raw JSON bytes and returns the
// marshaled response document, for the CLI entrypoint.
func Run(requestJSON []byte, seed int64, logger *zap.Logger) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(requestJSON, &req); err != nil {
		return nil, fmt.Errorf("dispatch: parsing request document: %w", err)
	}

	resp := Dispatch(req, seed, logger)

	out, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("dispatch: marshaling response document: %w", err)
	}
	return out, nil
}
