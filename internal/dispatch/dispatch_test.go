package dispatch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatchScenariosS1ThroughS6(t *testing.T) {
	requestJSON := []byte(`{
		"testcases": {
			"s1": {"action": "poly2block", "arguments": {"coefficients": [0,9,12,127], "semantic": "xex"}},
			"s2": {"action": "block2poly", "arguments": {"block": "ARIAAAAAAAAAAAAAAAAAgA==", "semantic": "xex"}},
			"s3": {"action": "gfmul", "arguments": {"a": "ARIAAAAAAAAAAAAAAAAAgA==", "b": "AgAAAAAAAAAAAAAAAAAAAA==", "semantic": "xex"}},
			"s4": {"action": "sea128", "arguments": {"mode": "encrypt", "key": "istDASeincoolerKEYrofg==", "input": "yv66vvrO263eyviIiDNEVQ=="}},
			"s5": {"action": "gcm_encrypt", "arguments": {"algorithm": "aes128", "nonce": "4gF+BtR3ku/PUQci", "key": "Xjq/GkpTSWoe3ZH0F+tjrQ==", "plaintext": "RGFzIGlzdCBlaW4gVGVzdA==", "ad": "QUQtRGF0ZW4="}},
			"s6": {"action": "gcm_encrypt", "arguments": {"algorithm": "sea128", "nonce": "4gF+BtR3ku/PUQci", "key": "Xjq/GkpTSWoe3ZH0F+tjrQ==", "plaintext": "RGFzIGlzdCBlaW4gVGVzdA==", "ad": "QUQtRGF0ZW4="}},
			"unknown": {"action": "not_a_real_action", "arguments": {}}
		}
	}`)

	logger := zap.NewNop()
	responseJSON, err := Run(requestJSON, 1, logger)
	require.NoError(t, err)

	var resp struct {
		Responses map[string]json.RawMessage `json:"responses"`
	}
	require.NoError(t, json.Unmarshal(responseJSON, &resp))

	require.NotContains(t, resp.Responses, "unknown")

	var s1 struct{ Block string }
	require.NoError(t, json.Unmarshal(resp.Responses["s1"], &s1))
	require.Equal(t, "ARIAAAAAAAAAAAAAAAAAgA==", s1.Block)

	var s2 struct{ Coefficients []int }
	require.NoError(t, json.Unmarshal(resp.Responses["s2"], &s2))
	require.Equal(t, []int{0, 9, 12, 127}, s2.Coefficients)

	var s3 struct{ Product string }
	require.NoError(t, json.Unmarshal(resp.Responses["s3"], &s3))
	require.Equal(t, "hSQAAAAAAAAAAAAAAAAAAA==", s3.Product)

	var s4 struct{ Output string }
	require.NoError(t, json.Unmarshal(resp.Responses["s4"], &s4))
	require.Equal(t, "D5FDo3iVBoBN9gVi9/MSKQ==", s4.Output)

	var s5 struct{ Ciphertext, Tag, L, H string }
	require.NoError(t, json.Unmarshal(resp.Responses["s5"], &s5))
	require.Equal(t, "ET3RmvH/Hbuxba63EuPRrw==", s5.Ciphertext)
	require.Equal(t, "Mp0APJb/ZIURRwQlMgNN/w==", s5.Tag)
	require.Equal(t, "AAAAAAAAAEAAAAAAAAAAgA==", s5.L)
	require.Equal(t, "Bu6ywbsUKlpmZXMQyuGAng==", s5.H)

	var s6 struct{ Ciphertext, Tag, H string }
	require.NoError(t, json.Unmarshal(resp.Responses["s6"], &s6))
	require.Equal(t, "0cI/Wg4R3URfrVFZ0hw/vg==", s6.Ciphertext)
	require.Equal(t, "ysDdzOSnqLH0MQ+Mkb23gw==", s6.Tag)
	require.Equal(t, "xhFcAUT66qWIpYz+Ch5ujw==", s6.H)
}

func TestDispatchReportsErrorsPerTestcase(t *testing.T) {
	requestJSON := []byte(`{
		"testcases": {
			"bad": {"action": "gfdiv", "arguments": {"a": "AAAAAAAAAAAAAAAAAAAAAA==", "b": "AAAAAAAAAAAAAAAAAAAAAA=="}}
		}
	}`)

	responseJSON, err := Run(requestJSON, 1, zap.NewNop())
	require.NoError(t, err)

	var resp struct {
		Responses map[string]json.RawMessage `json:"responses"`
	}
	require.NoError(t, json.Unmarshal(responseJSON, &resp))

	var errResp struct{ Error string }
	require.NoError(t, json.Unmarshal(resp.Responses["bad"], &errResp))
	require.NotEmpty(t, errResp.Error)
}
