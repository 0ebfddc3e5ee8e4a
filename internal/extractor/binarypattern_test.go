package extractor

import "testing"

func TestPreprocessBinaryRoundTrip(t *testing.T) {
	cases := []string{
		`$val =~ /^\xff\xd8\xff/`,
		`$val =~ /^\x89PNG\r\n\x1a\n/`,
		`$$self{Make} eq "Canon"`, // no binary escapes at all
		`pack("H*", "00\0ff")`,
	}
	for _, expr := range cases {
		processed, components := PreprocessBinary(expr)
		got := ReconstructBinary(processed, components)
		if got != expr {
			t.Fatalf("round trip mismatch:\n  input:      %q\n  processed:  %q\n  reconstruct: %q", expr, processed, got)
		}
	}
}

func TestPreprocessBinaryExtractsMagicNumberBytes(t *testing.T) {
	_, components := PreprocessBinary(`\xff\xd8\xff`)
	want := []byte{0xff, 0xd8, 0xff}
	if len(components) != len(want) {
		t.Fatalf("expected %d components, got %d", len(want), len(components))
	}
	for i, c := range components {
		if c.Byte != want[i] {
			t.Fatalf("component %d: got byte %#x want %#x", i, c.Byte, want[i])
		}
	}
}

func TestPreprocessBinaryOutputIsPlainText(t *testing.T) {
	processed, _ := PreprocessBinary(`\x89PNG\r\n\x1a\n`)
	for i := 0; i < len(processed); i++ {
		if processed[i] == 0x89 {
			t.Fatalf("processed string still contains a raw non-text byte at %d", i)
		}
	}
}
