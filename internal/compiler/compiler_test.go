package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babyduck/internal/bytecode"
	"babyduck/internal/compileerr"
	"babyduck/internal/compiler"
	"babyduck/internal/lexer"
	"babyduck/internal/parser"
)

func compile(t *testing.T, src string) (*compiler.Artifact, error) {
	t.Helper()
	toks := lexer.NewScanner(src).ScanTokens()
	p := parser.NewParser(toks)
	ast := p.Parse()
	require.Empty(t, p.Errors)
	return compiler.New(nil).Compile(ast)
}

func TestCompileSimpleAssignEmitsQuads(t *testing.T) {
	art, err := compile(t, `program p;
var x : int;
main {
	x = 1 + 2;
} end`)
	require.NoError(t, err)

	var ops []bytecode.OpCode
	for _, q := range art.Program.Quads {
		ops = append(ops, q.Op)
	}
	assert.Equal(t, []bytecode.OpCode{
		bytecode.MainStart, bytecode.Add, bytecode.Assign, bytecode.EndProgram,
	}, ops)
}

func TestCompileIntToFloatWideningAllowed(t *testing.T) {
	_, err := compile(t, `program p;
var x : float;
main {
	x = 3;
} end`)
	assert.NoError(t, err)
}

func TestCompileTypeErrorFloatIntoInt(t *testing.T) {
	_, err := compile(t, `program p;
var x : int;
main {
	x = 3.5;
} end`)
	require.Error(t, err)
	var cerr *compileerr.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, compileerr.Type, cerr.Kind)
}

func TestCompileUseBeforeInit(t *testing.T) {
	_, err := compile(t, `program p;
var x, y : int;
main {
	y = x + 1;
} end`)
	require.Error(t, err)
	var cerr *compileerr.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, compileerr.UseBeforeInit, cerr.Kind)
}

func TestCompileUndeclaredVariable(t *testing.T) {
	_, err := compile(t, `program p;
main {
	x = 1;
} end`)
	require.Error(t, err)
	var cerr *compileerr.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, compileerr.Declaration, cerr.Kind)
}

func TestCompileArityMismatch(t *testing.T) {
	_, err := compile(t, `program p;
void step(k : int) [ { } ];
main {
	step(1, 2);
} end`)
	require.Error(t, err)
	var cerr *compileerr.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, compileerr.Arity, cerr.Kind)
}

func TestCompileDuplicateGlobalDeclaration(t *testing.T) {
	_, err := compile(t, `program p;
var x : int;
var x : float;
main { } end`)
	require.Error(t, err)
	var cerr *compileerr.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, compileerr.Declaration, cerr.Kind)
}

func TestCompileConditionMustBeBool(t *testing.T) {
	_, err := compile(t, `program p;
var x : int;
main {
	x = 1;
	if (x) { } ;
} end`)
	require.Error(t, err)
	var cerr *compileerr.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, compileerr.Type, cerr.Kind)
}

func TestCompileFunctionRecursionAllowed(t *testing.T) {
	// A procedure can call itself: the function directory entry exists
	// before the body is translated (spec §4.7 step 3).
	art, err := compile(t, `program p;
void countdown(k : int) [ {
	if (k != 0) {
		countdown(k - 1);
	};
} ];
main {
	countdown(3);
} end`)
	require.NoError(t, err)
	assert.NotEmpty(t, art.Funcs.Names())
}

func TestArtifactCarriesGlobalsAndConstants(t *testing.T) {
	art, err := compile(t, `program p;
var total : int;
main {
	total = 5;
	total = total + 5;
} end`)
	require.NoError(t, err)
	assert.Len(t, art.Globals, 1)
	assert.NotEmpty(t, art.Constants)
}
