package pluralforms_test

import (
	"testing"

	"github.com/bigabdoul/polib/pluralforms"
	"github.com/stretchr/testify/require"
)

const (
	exprSlavic = "n % 10 == 1 && n % 100 != 11 ? 0 : " +
		"n % 10 >= 2 && n % 10 <= 4 && (n % 100 < 10 || n % 100 >= 20) ? 1 : 2"
	exprRomanian = "n == 1 ? 0 : n == 0 || (n % 100 > 0 && n % 100 < 20) ? 1 : 2"
	exprArabic   = "n == 0 ? 0 : n == 1 ? 1 : n == 2 ? 2 : " +
		"n % 100 >= 3 && n % 100 <= 10 ? 3 : n % 100 >= 11 ? 4 : 5"
)

func TestEvalSlavic(t *testing.T) {
	t.Parallel()

	p, err := pluralforms.Compile(exprSlavic)
	require.NoError(t, err)

	for n, want := range map[uint32]int{
		0: 2, 1: 0, 2: 1, 4: 1, 5: 2, 11: 2, 13: 2, 21: 0, 22: 1, 25: 2, 111: 2,
	} {
		v, err := p.Eval(n)
		require.NoError(t, err)
		require.Equal(t, want, v, "n=%d", n)
	}
}

func TestEvalRomanian(t *testing.T) {
	t.Parallel()

	p, err := pluralforms.Compile(exprRomanian)
	require.NoError(t, err)

	for n, want := range map[uint32]int{
		0: 1, 1: 0, 2: 1, 13: 1, 19: 1, 20: 2, 101: 1, 120: 2,
	} {
		v, err := p.Eval(n)
		require.NoError(t, err)
		require.Equal(t, want, v, "n=%d", n)
	}
}

func TestEvalArabic(t *testing.T) {
	t.Parallel()

	p, err := pluralforms.Compile(exprArabic)
	require.NoError(t, err)

	for n, want := range map[uint32]int{
		0: 0, 1: 1, 2: 2, 3: 3, 10: 3, 11: 4, 13: 4, 99: 4, 100: 5, 102: 5, 103: 3,
	} {
		v, err := p.Eval(n)
		require.NoError(t, err)
		require.Equal(t, want, v, "n=%d", n)
	}
}

func TestEvalDeterministic(t *testing.T) {
	t.Parallel()

	p, err := pluralforms.Compile(exprSlavic)
	require.NoError(t, err)

	// Memoized and fresh evaluations must agree.
	for n := uint32(0); n < 200; n++ {
		first, err := p.Eval(n)
		require.NoError(t, err)
		again, err := p.Eval(n)
		require.NoError(t, err)
		require.Equal(t, first, again, "n=%d", n)
	}
}

func TestEvalModuloByZero(t *testing.T) {
	t.Parallel()

	p, err := pluralforms.Compile("n % 0")
	require.NoError(t, err)
	_, err = p.Eval(3)
	require.ErrorIs(t, err, pluralforms.ErrModuloByZero)
}

func TestNativeRule(t *testing.T) {
	t.Parallel()

	r := pluralforms.NativeRule{
		NPlurals: 2,
		Index: func(n uint32) int {
			if n > 1 {
				return 1
			}
			return 0
		},
	}
	var expr pluralforms.Expression = r
	v, err := expr.Eval(0)
	require.NoError(t, err)
	require.Equal(t, 0, v)
	v, err = expr.Eval(5)
	require.NoError(t, err)
	require.Equal(t, 1, v)
}
