package locale

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		code string
	}{
		{in: "zh-cn", code: "zh-CN"},
		{in: "zh_cn", code: "zh-CN"},
		{in: "zhcn", code: "zh-CN"},
		{in: "zh", code: "zh-CN"},
		{in: "ZH-CN", code: "zh-CN"},
		{in: "zh-Hans", code: "zh-CN"},
		{in: "zh-TW", code: "zh-TW"},
		{in: "zh-Hant-HK", code: "zh-TW"},
		{in: " ja ", code: "ja"},
		{in: "ko-KR", code: "ko"},
		{in: "fil", code: "tl"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Normalize(tc.in)
			if err != nil {
				t.Fatalf("Normalize(%q) error: %v", tc.in, err)
			}
			if got.Code != tc.code {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got.Code, tc.code)
			}
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "klingon-x-1234567890", "sw"} {
		if _, err := Normalize(in); err == nil {
			t.Fatalf("Normalize(%q) expected error", in)
		}
	}
}

func TestSuffix(t *testing.T) {
	loc, err := Normalize(Default)
	if err != nil {
		t.Fatalf("Normalize(Default): %v", err)
	}
	if got := loc.Suffix(); got != "zh-cn" {
		t.Fatalf("Suffix() = %q, want zh-cn", got)
	}
}

func TestSupportedSorted(t *testing.T) {
	list := Supported()
	if len(list) == 0 {
		t.Fatalf("expected supported locales")
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Code >= list[i].Code {
			t.Fatalf("not sorted at %d: %q >= %q", i, list[i-1].Code, list[i].Code)
		}
	}
}
