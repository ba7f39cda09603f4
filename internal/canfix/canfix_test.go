// internal/canfix/canfix_test.go
package canfix

import (
	"bytes"
	"errors"
	"testing"
)

func TestHeader_NodeSpecificWorkedExample(t *testing.T) {
	a := Addressing{Mode: NodeSpecific, NodeID: 0x90, DataID: 0x300}

	// offset = (0 << 11) | 0x300 = 0x0300 -> low 0x00, high 0x03
	got := a.Header(0)
	want := [HeaderLen]byte{0x0C, 0x00, 0x03}
	if got != want {
		t.Fatalf("header=% X want % X", got, want)
	}
	if id := a.ArbitrationID(); id != 0x770 {
		t.Fatalf("arbitration id=0x%X want 0x770", id)
	}
}

func TestHeader_IndexArithmetic(t *testing.T) {
	cases := []struct {
		mode  Mode
		index uint8
		want  [HeaderLen]byte
	}{
		{Broadcast, 0, [HeaderLen]byte{0x91, 0x00, 0x00}},
		{Broadcast, 32, [HeaderLen]byte{0x91, 0x01, 0x00}},
		{Broadcast, 224, [HeaderLen]byte{0x91, 0x07, 0x00}},
		{NodeSpecific, 32, [HeaderLen]byte{0x0D, 0x08, 0x03}},
		{NodeSpecific, 33, [HeaderLen]byte{0x0D, 0x08, 0x0B}}, // (1<<11)|0x308 = 0x0B08
		{NodeSpecific, 224, [HeaderLen]byte{0x13, 0x08, 0x03}},
	}
	for _, tc := range cases {
		a := Addressing{Mode: tc.mode, NodeID: 0x91, DataID: 0x308}
		if got := a.Header(tc.index); got != tc.want {
			t.Fatalf("%s index=%d: header=% X want % X", tc.mode, tc.index, got, tc.want)
		}
	}
}

func TestAddressing_Validate(t *testing.T) {
	if err := (Addressing{Mode: Broadcast, NodeID: 0x90, DataID: 0x300}).Validate(); err != nil {
		t.Fatalf("valid addressing rejected: %v", err)
	}
	if err := (Addressing{Mode: Broadcast, DataID: 0x800}).Validate(); err == nil {
		t.Fatalf("expected 12-bit data id to be rejected")
	}
	if err := (Addressing{Mode: NodeSpecific, NodeID: 0xFF, DataID: 0x300}).Validate(); err != nil {
		t.Fatalf("node 0xFF gives 0x7DF and must be valid: %v", err)
	}
	if err := (Addressing{Mode: Mode(9)}).Validate(); err == nil {
		t.Fatalf("expected unknown mode to be rejected")
	}
}

func TestKind_StringMatchesParse(t *testing.T) {
	for name, k := range kindNames {
		if k.String() != name {
			t.Fatalf("%s.String()=%q", name, k.String())
		}
	}
	if got := Kind(0).String(); got != "kind(0)" {
		t.Fatalf("unknown kind=%q", got)
	}
}

func TestParseType(t *testing.T) {
	ty, err := ParseType("INT[2],BYTE")
	if err != nil {
		t.Fatalf("parse err=%v", err)
	}
	if ty.Size() != 5 || ty.NumericSlots() != 2 || ty.FlagBits() != 8 {
		t.Fatalf("INT[2],BYTE: size=%d nums=%d bits=%d", ty.Size(), ty.NumericSlots(), ty.FlagBits())
	}
	if ty.String() != "INT[2],BYTE" {
		t.Fatalf("String()=%q", ty.String())
	}

	ty, err = ParseType("byte[5]")
	if err != nil {
		t.Fatalf("parse err=%v", err)
	}
	if ty.Size() != 5 || ty.FlagBits() != 40 {
		t.Fatalf("BYTE[5]: size=%d bits=%d", ty.Size(), ty.FlagBits())
	}

	for _, bad := range []string{"", "LONG", "INT[0]", "INT[2", "INT[x]"} {
		if _, err := ParseType(bad); err == nil {
			t.Fatalf("expected %q to fail", bad)
		}
	}
	if _, err := ParseType("QUAD"); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestCodec_EncoderGroup(t *testing.T) {
	c, err := NewCodec("INT[2],BYTE", 1)
	if err != nil {
		t.Fatalf("codec err=%v", err)
	}
	got, err := c.Encode(Values{Numbers: []float64{3, -5}, Flags: []bool{false, false}, Fill: true})
	if err != nil {
		t.Fatalf("encode err=%v", err)
	}
	want := []byte{0x03, 0x00, 0xFB, 0xFF, 0xFC}
	if !bytes.Equal(got, want) {
		t.Fatalf("encode=% X want % X", got, want)
	}
}

func TestCodec_ButtonGroupBitOrder(t *testing.T) {
	c, _ := NewCodec("BYTE[5]", 0)
	flags := make([]bool, 40)
	flags[0] = true
	flags[9] = true
	flags[39] = true
	got, err := c.Encode(Values{Flags: flags})
	if err != nil {
		t.Fatalf("encode err=%v", err)
	}
	want := []byte{0x01, 0x02, 0x00, 0x00, 0x80}
	if !bytes.Equal(got, want) {
		t.Fatalf("encode=% X want % X", got, want)
	}
}

func TestCodec_MultiplierAndClamp(t *testing.T) {
	c, _ := NewCodec("INT,UINT,SHORT", 0.1)
	got, err := c.Encode(Values{Numbers: []float64{1.26, -4, 100}})
	if err != nil {
		t.Fatalf("encode err=%v", err)
	}
	// 12.6 -> 13 ; -40 -> clamp to 0 ; 1000 -> clamp to 127
	want := []byte{0x0D, 0x00, 0x00, 0x00, 0x7F}
	if !bytes.Equal(got, want) {
		t.Fatalf("encode=% X want % X", got, want)
	}

	if _, err := c.Encode(Values{Numbers: []float64{1, 2, 3, 4}}); err == nil {
		t.Fatalf("expected too many numbers to fail")
	}
	if _, err := c.Encode(Values{Flags: []bool{true}}); err == nil {
		t.Fatalf("expected flags on a flagless type to fail")
	}
}

func TestBuildFrame_BroadcastScenario(t *testing.T) {
	a := Addressing{Mode: Broadcast, NodeID: 0x90, DataID: 0x300}
	c, _ := NewCodec("INT[2],BYTE", 1)

	f, err := BuildFrame(a, 0, c, Values{Numbers: []float64{3, -5}, Flags: []bool{false, false}, Fill: true})
	if err != nil {
		t.Fatalf("build err=%v", err)
	}
	if f.ID != 0x300 {
		t.Fatalf("id=0x%X want 0x300", f.ID)
	}
	want := []byte{0x90, 0x00, 0x00, 0x03, 0x00, 0xFB, 0xFF, 0xFC}
	if !bytes.Equal(f.Payload(), want) {
		t.Fatalf("payload=% X want % X", f.Payload(), want)
	}
}

func TestBuildFrame_Overflow(t *testing.T) {
	a := Addressing{Mode: Broadcast, NodeID: 0x90, DataID: 0x300}
	c, _ := NewCodec("DINT,FLOAT", 1)
	if _, err := BuildFrame(a, 0, c, Values{}); !errors.Is(err, ErrPayloadOverflow) {
		t.Fatalf("expected ErrPayloadOverflow, got %v", err)
	}
}
