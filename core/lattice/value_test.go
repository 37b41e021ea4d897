package lattice

import (
	"encoding/json"
	"testing"
)

func TestValueText(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"integer-valued number", Number(10), "10"},
		{"fractional number", Number(0.5), "0.5"},
		{"scientific notation survives", Number(3e-9), "3e-09"},
		{"string verbatim", String("hv"), "hv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValueJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    Value
		wantErr bool
	}{
		{"number", `1.5`, Number(1.5), false},
		{"string", `"h"`, String("h"), false},
		{"numeric string stays a string", `"1.5"`, String("1.5"), false},
		{"object rejected", `{}`, Value{}, true},
		{"array rejected", `[1]`, Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			err := json.Unmarshal([]byte(tt.json), &v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if !v.Equal(tt.want) {
				t.Errorf("Unmarshal() = %#v, want %#v", v, tt.want)
			}

			data, err := json.Marshal(v)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.json {
				t.Errorf("Marshal() = %s, want %s", data, tt.json)
			}
		})
	}
}
