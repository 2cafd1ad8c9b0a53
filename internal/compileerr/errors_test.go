package compileerr_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"babyduck/internal/compileerr"
)

func TestErrorStringWithoutLocation(t *testing.T) {
	err := compileerr.NewTypeError("cannot assign %s to %s", "float", "int")
	assert.Equal(t, "TypeError: cannot assign float to int", err.Error())
}

func TestErrorStringWithLocation(t *testing.T) {
	err := compileerr.NewSyntaxError("unexpected token %q", ";").At(4, 9)
	assert.Equal(t, `SyntaxError: unexpected token ";" (line 4)`, err.Error())
}

func TestAtReturnsSameErrorForChaining(t *testing.T) {
	err := compileerr.NewDeclarationError("duplicate global %q", "x")
	chained := err.At(2, 1)
	assert.Same(t, err, chained)
	assert.Equal(t, 2, err.Location.Line)
}

func TestConstructorsSetExpectedKind(t *testing.T) {
	cases := []struct {
		name string
		err  *compileerr.Error
		kind compileerr.Kind
	}{
		{"syntax", compileerr.NewSyntaxError("x"), compileerr.Syntax},
		{"declaration", compileerr.NewDeclarationError("x"), compileerr.Declaration},
		{"type", compileerr.NewTypeError("x"), compileerr.Type},
		{"arity", compileerr.NewArityError("x"), compileerr.Arity},
		{"use-before-init", compileerr.NewUseBeforeInitError("x"), compileerr.UseBeforeInit},
		{"memory", compileerr.NewMemoryError("x"), compileerr.MemoryExhausted},
		{"runtime", compileerr.NewRuntimeError("x"), compileerr.Runtime},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.kind, c.err.Kind)
		})
	}
}
