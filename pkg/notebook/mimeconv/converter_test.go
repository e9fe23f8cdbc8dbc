package mimeconv

import "testing"

func TestConvert_PNGImageEncodesBase64(t *testing.T) {
	t.Parallel()
	out := Convert(PNGImage{Data: []byte("hello")})
	if out.MIMEType != "image/png" {
		t.Fatalf("MIMEType = %q, want image/png", out.MIMEType)
	}
	if out.Data != "aGVsbG8=" {
		t.Errorf("Data = %v, want base64 of %q", out.Data, "hello")
	}
}

func TestConvert_TableProducesJSONWithColumnsAndRows(t *testing.T) {
	t.Parallel()
	out := Convert(Table{Columns: []string{"a", "b"}, Rows: [][]any{{1, 2}}})
	if out.MIMEType != "application/json" {
		t.Fatalf("MIMEType = %q, want application/json", out.MIMEType)
	}
	data, ok := out.Data.(map[string]any)
	if !ok {
		t.Fatalf("Data is %T, want map[string]any", out.Data)
	}
	if data["type"] != "table" {
		t.Errorf("Data[type] = %v, want table", data["type"])
	}
}

func TestConvert_PlainValueFallsBackToText(t *testing.T) {
	t.Parallel()
	out := Convert(42)
	if out.MIMEType != "text/plain" {
		t.Fatalf("MIMEType = %q, want text/plain", out.MIMEType)
	}
	if out.Data != "42" {
		t.Errorf("Data = %v, want \"42\"", out.Data)
	}
}

type brokenStringer struct{}

func (brokenStringer) String() string { panic("boom") }

func TestConvert_PanickingStringerDegradesInsteadOfCrashing(t *testing.T) {
	t.Parallel()
	out := Convert(brokenStringer{})
	if out.MIMEType != "text/plain" {
		t.Fatalf("MIMEType = %q, want text/plain", out.MIMEType)
	}
	if s, ok := out.Data.(string); !ok || s == "" {
		t.Errorf("Data = %v, want a non-empty diagnostic string", out.Data)
	}
}
