package util

import (
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2014, time.February, 3, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2014-02-03", "2014-Feb-3", "2014-02-03T00:00:00Z", "02/03/2014", "20140203"} {
		got, err := ParseDate(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if !got.Equal(want) || got.Location() != time.UTC {
			t.Fatalf("parse %q: unexpected %v", s, got)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"yesterday", "2024", "1728518400", "20241301"} {
		if got, err := ParseDate(s); err == nil {
			t.Fatalf("parse %q: expected error, got %v", s, got)
		}
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestParseDatePtrEmpty(t *testing.T) {
	got, err := ParseDatePtr("")
	if err != nil || got != nil {
		t.Fatalf("expected nil, got %v %v", got, err)
	}
}

func TestDateOf(t *testing.T) {
	in := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)
	if got := DateOf(in); !got.Equal(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected %v", got)
	}
	if FormatDate(time.Time{}) != "" {
		t.Fatalf("zero time should format empty")
	}
}

func TestParseCell(t *testing.T) {
	cases := []struct {
		in   string
		v    float64
		ok   bool
		fail bool
	}{
		{in: "1.5", v: 1.5, ok: true},
		{in: " 1,234.5 ", v: 1234.5, ok: true},
		{in: "."},
		{in: ""},
		{in: "NaN"},
		{in: "abc", fail: true},
	}
	for _, c := range cases {
		v, ok, err := ParseCell(c.in)
		if (err != nil) != c.fail {
			t.Fatalf("%q: unexpected error %v", c.in, err)
		}
		if ok != c.ok || v != c.v {
			t.Fatalf("%q: got (%v, %v)", c.in, v, ok)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" a, ,b,c ")
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("unexpected %v", got)
	}
	if SplitList("") != nil {
		t.Fatalf("expected nil")
	}
}
