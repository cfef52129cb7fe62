package validator_test

import (
	"testing"

	"github.com/goto/quicksearch/core/validator"
	"github.com/stretchr/testify/assert"
)

func TestValidateStruct(t *testing.T) {
	type DummyStruct struct {
		VarOneOf string `json:"varoneof" validate:"omitempty,oneof=and or"`
		VarInt   int    `yaml:"varint" validate:"gte=0"`
	}

	type TestCase struct {
		Description string
		Struct      interface{}
		ErrString   string
	}

	testCases := []TestCase{
		{
			Description: "valid struct returns no error",
			Struct:      DummyStruct{VarOneOf: "or", VarInt: 2},
		},
		{
			Description: "return error with supported values in oneof type validation",
			Struct: DummyStruct{
				VarOneOf: "xor",
			},
			ErrString: "error value \"xor\" for key \"varoneof\" not recognized, only support \"and or\"",
		},
		{
			Description: "return error should greater than 0 in integer type validation",
			Struct: DummyStruct{
				VarInt: -1,
			},
			ErrString: "varint cannot be less than 0",
		},
		{
			Description: "multiple failures are joined",
			Struct: DummyStruct{
				VarOneOf: "xor",
				VarInt:   -3,
			},
			ErrString: "error value \"xor\" for key \"varoneof\" not recognized, only support \"and or\" and varint cannot be less than 0",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Description, func(t *testing.T) {
			err := validator.ValidateStruct(tc.Struct)
			if tc.ErrString == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.ErrString)
		})
	}
}

func TestValidateOneOf(t *testing.T) {
	type TestCase struct {
		Description string
		Value       string
		Enums       []string
		ErrString   string
	}

	testCases := []TestCase{
		{
			Description: "return error with supported values",
			Value:       "random",
			Enums:       []string{"contains", "equals"},
			ErrString:   "error value \"random\" not recognized, only support \"contains equals\"",
		},
		{
			Description: "empty value is accepted",
			Value:       "",
			Enums:       []string{"contains", "equals"},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Description, func(t *testing.T) {
			err := validator.ValidateOneOf(tc.Value, tc.Enums...)
			if tc.ErrString == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tc.ErrString)
		})
	}
}
