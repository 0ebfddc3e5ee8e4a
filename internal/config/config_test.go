package config

import "testing"

func TestValidateAcceptsWellFormedSimpleTable(t *testing.T) {
	v := NewValidator()
	raw := []byte(`{
		"source": "Canon.pm",
		"tables": [{"hash_name": "%canonModelID", "constant_name": "CANON_MODEL_ID", "key_type": "u32"}]
	}`)
	if err := v.Validate(SimpleTable, "configs/canon_simple_table.json", raw); err != nil {
		t.Fatalf("expected valid config to pass, got %v", err)
	}
}

func TestValidateRejectsMissingRequiredKey(t *testing.T) {
	v := NewValidator()
	raw := []byte(`{"tables": [{"hash_name": "%canonModelID", "constant_name": "CANON_MODEL_ID", "key_type": "u32"}]}`)
	if err := v.Validate(SimpleTable, "configs/canon_simple_table.json", raw); err == nil {
		t.Fatal("expected missing 'source' to fail validation")
	}
}

func TestValidateRejectsBadKeyType(t *testing.T) {
	v := NewValidator()
	raw := []byte(`{
		"source": "Canon.pm",
		"tables": [{"hash_name": "%canonModelID", "constant_name": "CANON_MODEL_ID", "key_type": "not-a-real-type"}]
	}`)
	if err := v.Validate(SimpleTable, "configs/canon_simple_table.json", raw); err == nil {
		t.Fatal("expected an invalid key_type to fail validation")
	}
}

func TestDecodeProducesTypedConfig(t *testing.T) {
	v := NewValidator()
	raw := []byte(`{
		"source": "Canon.pm",
		"tables": [{"hash_name": "%canonModelID", "constant_name": "CANON_MODEL_ID", "key_type": "u32"}]
	}`)
	var cfg SimpleTableConfig
	if err := v.Decode(SimpleTable, "configs/canon_simple_table.json", raw, &cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != "Canon.pm" || len(cfg.Tables) != 1 || cfg.Tables[0].ConstantName != "CANON_MODEL_ID" {
		t.Fatalf("unexpected decoded config: %+v", cfg)
	}
}

func TestValidateCompositeTagsConfig(t *testing.T) {
	v := NewValidator()
	raw := []byte(`{"source": "Composite.pm", "table": "Composite", "min_frequency": 0.1}`)
	if err := v.Validate(CompositeTags, "configs/composite.json", raw); err != nil {
		t.Fatalf("expected valid composite_tags config to pass, got %v", err)
	}
}

func TestValidateRuntimeTableConfig(t *testing.T) {
	v := NewValidator()
	raw := []byte(`{
		"source": "Canon.pm",
		"tables": [{"table_name": "CameraInfo", "function_name": "ProcessCameraInfo"}]
	}`)
	if err := v.Validate(RuntimeTable, "configs/canon_runtime.json", raw); err != nil {
		t.Fatalf("expected valid runtime_table config to pass, got %v", err)
	}
}
