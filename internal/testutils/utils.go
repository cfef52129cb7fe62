package testutils

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// AssertEqualJSON compares the json encoding of actual with the expected
// document, ignoring formatting and key order.
func AssertEqualJSON(t *testing.T, expected string, actual interface{}) {
	t.Helper()

	var want, got interface{}
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		t.Fatalf("decode expected json: %v", err)
	}

	b, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("encode actual value: %v", err)
	}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("decode actual json: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		msg := fmt.Sprintf(
			"Not equal:\n"+
				"expected:\n\t'%s'\n"+
				"actual:\n\t'%s'\n"+
				"diff (-expected +actual):\n%s",
			expected, b, diff,
		)
		assert.Fail(t, msg)
	}
}
