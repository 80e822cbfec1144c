package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{"config error", "E102", "Invalid configuration value", CategoryConfig},
		{"persist error", "E202", "Stored state has an unsupported version", CategoryPersist},
		{"cli error", "E301", "Unknown store", CategoryCLI},
		{"unknown code", "E999", "Unknown error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New("E102").WithDetailf("log.level %q", "loud").Wrap(fmt.Errorf("boom"))
	want := `E102: Invalid configuration value: log.level "loud": boom`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if err.FormatCompact() != want {
		t.Errorf("FormatCompact() = %q", err.FormatCompact())
	}
}

func TestWrapAndIs(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := fmt.Errorf("loading: %w", New("E100").Wrap(cause))

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !stderrors.Is(err, New("E100")) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New("E101")) {
		t.Error("different codes must not match")
	}
	if CodeOf(err) != "E100" {
		t.Errorf("CodeOf = %q", CodeOf(err))
	}
	if CodeOf(cause) != "" {
		t.Errorf("CodeOf(plain) = %q", CodeOf(cause))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E300") != nil {
		t.Error("FromError(nil) should be nil")
	}
	existing := New("E301")
	if got := FromError(fmt.Errorf("ctx: %w", existing), "E300"); got != existing {
		t.Error("FromError should return an AppError already in the chain")
	}
	plain := stderrors.New("bad flag")
	got := FromError(plain, "E300")
	if got.Code != "E300" || got.Wrapped != plain {
		t.Errorf("FromError = %+v", got)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %s requires a value", "--size")
	if err.Message != "flag --size requires a value" || err.Code != "" {
		t.Errorf("Newf = %+v", err)
	}
	if err.Error() != "flag --size requires a value" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestFormat(t *testing.T) {
	err := New("E202").
		WithDetail("preferences stored v3, want v1").
		Wrap(stderrors.New("version mismatch"))
	out := Formatter{}.Format(err)

	for _, want := range []string{
		"ERROR E202: Stored state has an unsupported version",
		"preferences stored v3, want v1",
		"Cause: version mismatch",
		"Hint: Run `sakinah state reset`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("Formatter without color emitted ANSI codes")
	}
	if !strings.Contains(err.Format(), colorRed) {
		t.Error("Format() should use color")
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, New("E303"), false)
	if !strings.Contains(buf.String(), "ERROR E303: Server failed") {
		t.Errorf("Print(AppError) = %q", buf.String())
	}
	buf.Reset()
	Print(&buf, stderrors.New("plain"), false)
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Print(plain) = %q", buf.String())
	}
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(New("E104").WithDetail("pixel ratio 0"))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["code"] != "E104" || got["category"] != "config" || got["detail"] != "pixel ratio 0" {
		t.Errorf("json = %s", data)
	}
}

func TestWrapText(t *testing.T) {
	long := strings.Repeat("word ", 40)
	for _, line := range wrapText(long, 20) {
		if len(line) > 20 {
			t.Errorf("line %q longer than 20", line)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
}

func TestRegistryCodes(t *testing.T) {
	codes := Codes()
	if len(codes) == 0 {
		t.Fatal("no codes registered")
	}
	for _, code := range codes {
		tmpl, ok := Lookup(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template %+v", code, tmpl)
		}
		prefix := map[Category]string{CategoryConfig: "E1", CategoryPersist: "E2", CategoryCLI: "E3"}[tmpl.Category]
		if !strings.HasPrefix(code, prefix) {
			t.Errorf("code %s in category %s", code, tmpl.Category)
		}
	}
}
