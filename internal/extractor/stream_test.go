package extractor

import "testing"

func TestParseStreamDecodesRecords(t *testing.T) {
	stdout := `{"type":"hash","name":"canonColorSpace","module":"Image::ExifTool::Canon","data":{"1":"sRGB","2":"Adobe RGB","65535":"n/a"},"metadata":{"size":3,"is_composite_table":false}}
{"type":"hash","name":"canonFlashMode","module":"Image::ExifTool::Canon","data":{"-1":"n/a","0":"Off","1":"Auto"},"metadata":{"size":3,"is_composite_table":false}}
`
	symbols, err := ParseStream("Image::ExifTool::Canon", stdout)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	if len(symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(symbols))
	}
	if symbols[0].Name != "canonColorSpace" {
		t.Fatalf("unexpected first symbol: %+v", symbols[0])
	}
	if symbols[0].Data["1"] != "sRGB" {
		t.Fatalf("expected key 1 => sRGB, got %v", symbols[0].Data["1"])
	}
}

func TestParseStreamRewritesMagicNumber(t *testing.T) {
	// ASCII-only stand-in: ParseStream converts each magicNumber entry's
	// bytes to raw_bytes on the Go side, after JSON decoding (spec §4.1
	// step 7); this test exercises that rewrite path with a JSON-safe
	// payload instead of genuinely non-UTF-8 bytes.
	stdout := `{"type":"hash","name":"magicNumber","module":"Image::ExifTool","data":{"RIFF":"RIFF"},"metadata":{"size":1,"is_composite_table":false}}
`
	symbols, err := ParseStream("Image::ExifTool", stdout)
	if err != nil {
		t.Fatalf("ParseStream: %v", err)
	}
	riff, ok := symbols[0].Data["RIFF"].(map[string]any)
	if !ok {
		t.Fatalf("expected RIFF entry to become a raw_bytes map, got %T", symbols[0].Data["RIFF"])
	}
	rawBytes, ok := riff["raw_bytes"].([]any)
	if !ok || len(rawBytes) != 4 {
		t.Fatalf("expected 4 raw bytes, got %v", riff["raw_bytes"])
	}
	if int(rawBytes[0].(float64)) != 'R' {
		t.Fatalf("expected first byte 'R', got %v", rawBytes[0])
	}
}

func TestParseStreamRejectsMalformedLine(t *testing.T) {
	stdout := "{not json}\n"
	_, err := ParseStream("Image::ExifTool::Canon", stdout)
	if err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestDetectBanners(t *testing.T) {
	stderr := "===EXTRACTOR-START===\nwarning: skipping Foo\n===EXTRACTOR-END===\n"
	start, end := DetectBanners(stderr)
	if !start || !end {
		t.Fatalf("expected both banners detected, got start=%v end=%v", start, end)
	}

	start, end = DetectBanners("nothing here")
	if start || end {
		t.Fatal("expected no banners detected in unrelated text")
	}
}
