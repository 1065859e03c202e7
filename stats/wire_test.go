package stats

import (
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestSampleWireRoundTrip(t *testing.T) {
	in := &Sample{
		RunID:      "run-42",
		Seq:        7,
		UnixNanos:  1724400000123456789,
		Generation: 901,
		Pending:    3,
		Lag:        12,
		Readers:    4,
		Retired:    5000,
		Reclaimed:  4997,
	}

	var out Sample
	if err := Unmarshal(Marshal(in), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != *in {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", out, *in)
	}
}

func TestUnmarshalSkipsUnknownFields(t *testing.T) {
	in := &Sample{RunID: "r", Seq: 1, Generation: 2}
	buf := Marshal(in)
	buf = protowire.AppendTag(buf, 15, protowire.VarintType)
	buf = protowire.AppendVarint(buf, 99)

	var out Sample
	if err := Unmarshal(buf, &out); err != nil {
		t.Fatalf("unmarshal with unknown field: %v", err)
	}
	if out.RunID != "r" || out.Seq != 1 || out.Generation != 2 {
		t.Fatalf("known fields lost: %+v", out)
	}
}

func TestUnmarshalTruncated(t *testing.T) {
	buf := Marshal(&Sample{RunID: "r", Reclaimed: 300})
	var out Sample
	if err := Unmarshal(buf[:len(buf)-1], &out); err == nil {
		t.Fatal("expected an error for a truncated buffer")
	}
}
