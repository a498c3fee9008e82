package validation

import (
	"errors"
	"testing"
)

type sample struct {
	Code  string `validate:"required,max=8"`
	Level int    `validate:"min=1,max=15"`
	Mode  string `validate:"oneof=mastery stage_test levelup exam"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name       string
		input      sample
		wantErr    bool
		wantFields []string
	}{
		{
			name:    "valid",
			input:   sample{Code: "ABC", Level: 3, Mode: "mastery"},
			wantErr: false,
		},
		{
			name:       "missing code",
			input:      sample{Level: 3, Mode: "exam"},
			wantErr:    true,
			wantFields: []string{"Code"},
		},
		{
			name:       "level and mode out of range",
			input:      sample{Code: "ABC", Level: 20, Mode: "quiz"},
			wantErr:    true,
			wantFields: []string{"Level", "Mode"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error %T is not a *ValidationError", err)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("got %d field errors, want %d", len(verr.Fields), len(tt.wantFields))
			}
			for i, f := range tt.wantFields {
				if verr.Fields[i].Field != f {
					t.Errorf("field %d = %s, want %s", i, verr.Fields[i].Field, f)
				}
			}
		})
	}
}
