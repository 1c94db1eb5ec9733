package config

import "testing"

func TestGetOption_PresentAndCorrectType(t *testing.T) {
	cfg := ProviderConfig{Options: map[string]any{"region": "us-east-1"}}
	v, ok := GetOption[string](cfg, "region")
	if !ok || v != "us-east-1" {
		t.Errorf("GetOption = (%q, %v), want (%q, true)", v, ok, "us-east-1")
	}
}

func TestGetOption_AbsentKey(t *testing.T) {
	cfg := ProviderConfig{Options: map[string]any{"region": "us-east-1"}}
	_, ok := GetOption[string](cfg, "missing")
	if ok {
		t.Error("expected ok=false for missing key")
	}
}

func TestGetOption_NilOptions(t *testing.T) {
	cfg := ProviderConfig{}
	_, ok := GetOption[string](cfg, "region")
	if ok {
		t.Error("expected ok=false for nil Options")
	}
}

func TestGetOption_WrongType(t *testing.T) {
	cfg := ProviderConfig{Options: map[string]any{"dimensions": "not-a-float"}}
	_, ok := GetOption[float64](cfg, "dimensions")
	if ok {
		t.Error("expected ok=false when stored value has a different type")
	}
}

func TestGetOption_BoolAndFloat64(t *testing.T) {
	cfg := ProviderConfig{Options: map[string]any{"self_editable": true, "persona_limit": 42.0}}
	b, ok := GetOption[bool](cfg, "self_editable")
	if !ok || !b {
		t.Errorf("GetOption[bool] = (%v, %v), want (true, true)", b, ok)
	}
	f, ok := GetOption[float64](cfg, "persona_limit")
	if !ok || f != 42.0 {
		t.Errorf("GetOption[float64] = (%v, %v), want (42.0, true)", f, ok)
	}
}
