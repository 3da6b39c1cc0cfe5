package convert

import (
	"bytes"
	"testing"
)

func TestDefaultTypes(t *testing.T) {
	converter := NewDefault()
	types := converter.Types()
	if types["bigint"] != KindInt64 {
		t.Fatalf("bigint kind = %v", types["bigint"])
	}
	if types["double"] != KindFloat64 {
		t.Fatalf("double kind = %v", types["double"])
	}
	if _, ok := types["timestamp"]; ok {
		t.Fatal("timestamp must not be a cast type; it is handled by date parsing")
	}
}

func TestGetFallsBackToIdentity(t *testing.T) {
	converter := NewDefault()
	fn := converter.Get("timestamp with time zone")
	value, err := fn("2026-01-02 03:04:05")
	if err != nil {
		t.Fatalf("identity conversion error = %v", err)
	}
	if value != "2026-01-02 03:04:05" {
		t.Fatalf("identity conversion = %v", value)
	}
}

func TestBooleanMapping(t *testing.T) {
	converter := NewDefault()
	fn := converter.Get("boolean")
	value, err := fn("true")
	if err != nil {
		t.Fatalf("boolean conversion error = %v", err)
	}
	if value != true {
		t.Fatalf("boolean conversion = %v", value)
	}
	if _, err := fn("not-a-bool"); err == nil {
		t.Fatal("expected error for malformed boolean")
	}
}

func TestVarbinaryMapping(t *testing.T) {
	converter := NewDefault()
	fn := converter.Get("varbinary")
	value, err := fn("de ad be ef")
	if err != nil {
		t.Fatalf("varbinary conversion error = %v", err)
	}
	if !bytes.Equal(value.([]byte), []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Fatalf("varbinary conversion = %v", value)
	}
}

func TestCast(t *testing.T) {
	value, err := Cast("42", KindInt64)
	if err != nil {
		t.Fatalf("Cast int error = %v", err)
	}
	if value != int64(42) {
		t.Fatalf("Cast int = %v", value)
	}

	value, err = Cast("1.5", KindFloat64)
	if err != nil {
		t.Fatalf("Cast float error = %v", err)
	}
	if value != 1.5 {
		t.Fatalf("Cast float = %v", value)
	}

	if _, err := Cast("abc", KindInt64); err == nil {
		t.Fatal("expected error for malformed integer")
	}
}
