package signal

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/iyulab/guidecheck/internal/span"
)

func TestNewSet_OrderIndependentAndDeduplicated(t *testing.T) {
	a := Signal{Kind: "x", Span: span.Span{Start: 10, End: 20}, Token: "foo"}
	b := Signal{Kind: "y", Span: span.Span{Start: 0, End: 3}, Token: "bar"}

	s1 := NewSet(a, b, a)
	s2 := NewSet(b, a)
	if !reflect.DeepEqual(s1.All(), s2.All()) {
		t.Errorf("sets differ: %v vs %v", s1.All(), s2.All())
	}
	if s1.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s1.Len())
	}
	if got := s1.All()[0]; got != b {
		t.Errorf("first signal = %v, want %v", got, b)
	}
	if !s1.Has("x") || s1.Has("z") {
		t.Error("Has() reports wrong kinds")
	}
	if got := s1.Kinds(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("Kinds() = %v", got)
	}
}

func TestPatternScanner_UsesFirstGroup(t *testing.T) {
	s, err := NewPatternScanner("hook", `\b(use[A-Z]\w*)\s*\(`)
	if err != nil {
		t.Fatal(err)
	}
	text := "const [a] = useState(0)"
	got := s.Scan(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(got))
	}
	if got[0].Token != "useState" {
		t.Errorf("token = %q, want useState", got[0].Token)
	}
	if text[got[0].Span.Start:got[0].Span.End] != "useState" {
		t.Errorf("span %v does not cover token", got[0].Span)
	}
}

func TestNewPatternScanner_Errors(t *testing.T) {
	if _, err := NewPatternScanner("", "x"); err == nil {
		t.Error("expected error for empty kind")
	}
	if _, err := NewPatternScanner("k", ""); err == nil {
		t.Error("expected error for empty pattern")
	}
	if _, err := NewPatternScanner("k", "("); err == nil {
		t.Error("expected error for bad regexp")
	}
}

func TestKeywordScanner_WordBoundaries(t *testing.T) {
	s, err := NewKeywordScanner("storage", "localStorage")
	if err != nil {
		t.Fatal(err)
	}
	got := s.Scan("localStorage.getItem(k); mylocalStorage; localStorageX")
	if len(got) != 1 {
		t.Fatalf("expected 1 signal, got %d: %v", len(got), got)
	}
	if got[0].Span.Start != 0 || got[0].Token != "localStorage" {
		t.Errorf("unexpected signal %v", got[0])
	}
	if _, err := NewKeywordScanner("k"); err == nil {
		t.Error("expected error for no keywords")
	}
}

func TestBuiltin_DetectsCommonKinds(t *testing.T) {
	text := strings.Join([]string{
		`"use client"`,
		`import React, { useEffect } from "react"`,
		`export async function GET(req) {`,
		`  const res = await fetch(process.env.API_URL)`,
		`  console.log(window.location)`,
		`}`,
		`function Widget() {`,
		`  const [v, setV] = useState(0)`,
		`  useEffect(() => { localStorage.setItem("v", v) })`,
		`  return <Panel onClick={handleClick} />`,
		`}`,
	}, "\n")

	set, err := NewExtractor(nil, Builtin()...).Extract(text)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for _, kind := range []string{
		KindClientDirective, KindAPIImport, KindHandlerDefinition, KindAsyncFunction,
		KindFetchCall, KindEnvAccess, KindConsoleCall, KindBrowserGlobal,
		KindHookUsage, KindStateHook, KindEffectHook, KindStorageAccess, KindJSXElement,
	} {
		if !set.Has(kind) {
			t.Errorf("expected signal kind %q, got kinds %v", kind, set.Kinds())
		}
	}
	imports := set.OfKind(KindAPIImport)
	if len(imports) != 1 || imports[0].Token != "react" {
		t.Errorf("api-import = %v, want token react", imports)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	text := "useA(); useB(); console.log(1)"
	ex := NewExtractor(nil, Builtin()...)
	first, err := ex.Extract(text)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, _ := ex.Extract(text)
		if !reflect.DeepEqual(first.All(), again.All()) {
			t.Fatal("extraction is not deterministic")
		}
	}
}

func TestExtract_NoSignals(t *testing.T) {
	set, err := NewExtractor(nil, Builtin()...).Extract("plain prose, nothing to see")
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 0 {
		t.Errorf("expected no signals, got %v", set.All())
	}
}

func TestExtract_RejectsBinaryAndInvalidUTF8(t *testing.T) {
	ex := NewExtractor(nil, Builtin()...)
	for _, text := range []string{"abc\x00def", "ok\xff\xfe"} {
		_, err := ex.Extract(text)
		var xerr *ExtractionError
		if !errors.As(err, &xerr) {
			t.Errorf("Extract(%q) error = %v, want *ExtractionError", text, err)
		}
	}
	_, err := ex.Extract("ok\xffz")
	var xerr *ExtractionError
	if errors.As(err, &xerr) && xerr.Offset != 2 {
		t.Errorf("offset = %d, want 2", xerr.Offset)
	}
}

type panicScanner struct{}

func (panicScanner) Kind() string           { return "boom" }
func (panicScanner) Scan(string) []Signal { panic("scanner bug") }

func TestExtract_RecoversScannerPanic(t *testing.T) {
	ok, _ := NewKeywordScanner("word", "hello")
	set, err := NewExtractor(nil, panicScanner{}, ok).Extract("hello")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !set.Has("word") || set.Has("boom") {
		t.Errorf("kinds = %v, want only word", set.Kinds())
	}
}
