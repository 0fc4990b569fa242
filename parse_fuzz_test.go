package mexer_test

import (
	"testing"

	"github.com/zephyrtronium/mexer"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y = 2x; f(a, b) = a b")
	f.Add("1×2")
	f.Fuzz(func(t *testing.T, s string) {
		p, err := mexer.Parse(s)
		if err != nil {
			if _, ok := err.(mexer.InputError); !ok {
				t.Errorf("error for %q is not an InputError: %v", s, err)
			}
			return
		}
		if p.Len() == 0 {
			t.Errorf("%q parsed to no statements", s)
		}
	})
}
