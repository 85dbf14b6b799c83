package core

import (
	"encoding/json"
	"testing"

	ggh "github.com/BackendStack21/ggh-go"
)

func TestEqual_Coverage(t *testing.T) {
	if !Equal(GGH2Params, GGH2Params) {
		t.Error("preset should equal itself")
	}
	if Equal(GGH2Params, GGH3Params) {
		t.Error("different presets should differ")
	}

	p := GGH3Params
	p.NoiseParameter++
	if Equal(GGH3Params, p) {
		t.Error("Equal should see the noise parameter")
	}
}

func TestPresetsAreIndependentCopies(t *testing.T) {
	p, err := GetParams(ggh.GGH2)
	if err != nil {
		t.Fatal(err)
	}
	p.Dimension = 9
	if GGH2Params.Dimension != 2 {
		t.Error("GetParams should return a copy of the preset")
	}
}

func TestPresetsGrow(t *testing.T) {
	presets := []ggh.Params{GGH2Params, GGH3Params, GGH4Params}
	for i := 1; i < len(presets); i++ {
		if presets[i].Dimension <= presets[i-1].Dimension {
			t.Errorf("%s should have a larger dimension than %s", presets[i].Level, presets[i-1].Level)
		}
		if presets[i].BasisParameter != int64(2*presets[i].Dimension+10) {
			t.Errorf("%s basis parameter should be 2n+10", presets[i].Level)
		}
	}
}

func TestParamsJSON_Coverage(t *testing.T) {
	data, err := json.Marshal(GGH4Params)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"level", "dimension", "basis_parameter", "noise_parameter", "max_unimodular_bits"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing JSON field %q", key)
		}
	}
	if fields["level"] != "GGH-4" {
		t.Errorf("level = %v", fields["level"])
	}
}
