package core

import "testing"

func TestParseArithmetic(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"50,00", "50", true},
		{"1.234,56", "1234.56", true},
		{"100.00", "100", true},
		{" 2,50 ", "2.5", true},
		{"-12,34", "-12.34", true},
		{"0", "0", true},
		{"", "", false},
		{"abc", "", false},
		{"1,2,3", "", false},
	}
	for _, tc := range cases {
		got, err := ParseArithmetic(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseArithmetic(%q) unexpected error: %v", tc.in, err)
			}
			if got.String() != tc.out {
				t.Fatalf("ParseArithmetic(%q) = %s, want %s", tc.in, got, tc.out)
			}
		} else if err == nil {
			t.Fatalf("ParseArithmetic(%q) expected error, got %s", tc.in, got)
		}
	}
}

func TestParseCentsShift(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"123,456.78", "123456.78", true},
		{"1.234,56", "1234.56", true},
		{"5000", "50", true},
		{"-10000", "-100", true},
		{"", "", false},
		{"R$ 10", "", false},
	}
	for _, tc := range cases {
		got, err := ParseCentsShift(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseCentsShift(%q) unexpected error: %v", tc.in, err)
			}
			if got.String() != tc.out {
				t.Fatalf("ParseCentsShift(%q) = %s, want %s", tc.in, got, tc.out)
			}
		} else if err == nil {
			t.Fatalf("ParseCentsShift(%q) expected error, got %s", tc.in, got)
		}
	}
}

func TestFormatBRLRoundTrip(t *testing.T) {
	// format(arithmetic_parse(s)) must reproduce canonical PT-BR notation.
	cases := []struct{ in, want string }{
		{"1.234,56", "1.234,56"},
		{"50,00", "50,00"},
		{"0,5", "0,50"},
		{"1234567,89", "1.234.567,89"},
		{"-100,00", "-100,00"},
		{"100.00", "100,00"},
	}
	for _, tc := range cases {
		d, err := ParseArithmetic(tc.in)
		if err != nil {
			t.Fatalf("ParseArithmetic(%q): %v", tc.in, err)
		}
		if got := FormatBRL(d); got != tc.want {
			t.Fatalf("FormatBRL(ParseArithmetic(%q)) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeDisplay(t *testing.T) {
	cases := []struct{ in, want string }{
		{"123,456.78", "123.456,78"}, // US-rendered input
		{"1.234,56", "1.234,56"},     // canonical PT-BR is a fixed point
		{"50,00", "50,00"},
		{"not a number", "not a number"}, // unreadable comes back unchanged
	}
	for _, tc := range cases {
		if got := NormalizeDisplay(tc.in); got != tc.want {
			t.Fatalf("NormalizeDisplay(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
