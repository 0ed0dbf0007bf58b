package demangle

import "testing"

// TestDemangle tests decoding mangled symbol names into readable ones.
func TestDemangle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		symbol string
		want   string
	}{
		{
			name:   "legacy rust symbol drops the trailing hash",
			symbol: "_ZN8cov_test4main17h7eb435a3fb3e6f20E",
			want:   "cov_test::main",
		},
		{
			name:   "nested legacy rust path",
			symbol: "_ZN4core3ptr13drop_in_place17h1c8e6fe3f477bb7aE",
			want:   "core::ptr::drop_in_place",
		},
		{
			name:   "legacy rust symbol without a hash",
			symbol: "_ZN8cov_test4mainE",
			want:   "cov_test::main",
		},
		{
			name:   "trait impl with escapes",
			symbol: "_ZN53_$LT$cov_test..Grid$u20$as$u20$core..fmt..Display$GT$3fmt17h0123456789abcdefE",
			want:   "<cov_test::Grid as core::fmt::Display>::fmt",
		},
		{
			name:   "closure component",
			symbol: "_ZN8cov_test4main27$u7b$$u7b$closure$u7d$$u7d$17h0123456789abcdefE",
			want:   "cov_test::main::{{closure}}",
		},
		{
			name:   "thinlto renaming is stripped",
			symbol: "_ZN8cov_test4main17h7eb435a3fb3e6f20E.llvm.16712919856050817897",
			want:   "cov_test::main",
		},
		{
			name:   "cold split suffix is kept",
			symbol: "_ZN8cov_test4main17h7eb435a3fb3e6f20E.cold",
			want:   "cov_test::main.cold",
		},
		{
			name:   "lone hash component is kept",
			symbol: "_ZN17h0123456789abcdefE",
			want:   "h0123456789abcdef",
		},
		{
			name:   "rust v0 symbol goes through the itanium demangler",
			symbol: "_RNvC8cov_test4main",
			want:   "cov_test::main",
		},
		{
			name:   "c++ function symbol",
			symbol: "_ZN3foo3barEv",
			want:   "foo::bar()",
		},
		{
			name:   "readable name passes through",
			symbol: "cov_test::main",
			want:   "cov_test::main",
		},
		{
			name:   "truncated mangling passes through",
			symbol: "_ZN8cov_test",
			want:   "_ZN8cov_test",
		},
		{
			name:   "plain c symbol passes through",
			symbol: "main",
			want:   "main",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Demangle(tc.symbol); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

// TestDemangleLegacyRust tests the legacy decoder's acceptance rules.
func TestDemangleLegacyRust(t *testing.T) {
	t.Parallel()

	t.Run("rejects a component length past the end", func(t *testing.T) {
		t.Parallel()

		if _, ok := demangleLegacyRust("_ZN99short4mainE"); ok {
			t.Error("expected rejection for an oversized component length")
		}
	})

	t.Run("rejects trailing garbage after the terminator", func(t *testing.T) {
		t.Parallel()

		if _, ok := demangleLegacyRust("_ZN8cov_test4mainEv"); ok {
			t.Error("expected rejection for a non-dot suffix")
		}
	})

	t.Run("accepts the bare prefix variants", func(t *testing.T) {
		t.Parallel()

		for _, symbol := range []string{
			"ZN8cov_test4mainE",
			"__ZN8cov_test4mainE",
		} {
			got, ok := demangleLegacyRust(symbol)
			if !ok {
				t.Errorf("expected %q to decode", symbol)
				continue
			}
			if got != "cov_test::main" {
				t.Errorf("expected %q, got %q", "cov_test::main", got)
			}
		}
	})

	t.Run("unknown escape ends the component", func(t *testing.T) {
		t.Parallel()

		got, ok := demangleLegacyRust("_ZN8cov_test11foo$XY$restE")
		if !ok {
			t.Fatal("expected the symbol to decode")
		}
		if got != "cov_test::foo" {
			t.Errorf("expected %q, got %q", "cov_test::foo", got)
		}
	})
}
