package qlang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEndToEndScenarios exercises a handful of representative programs
// end to end, through the Compile/Run seam exactly as a host would use it.
func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		wantOutput string
		wantExit   int16
	}{
		{
			name:       "println an int literal",
			source:     `fn main(): int { println(42); return 0; }`,
			wantOutput: "42\n",
			wantExit:   0,
		},
		{
			name:       "print a string and return nonzero",
			source:     `fn main(): int { let s: str = "hi"; print(s); return 1; }`,
			wantOutput: "hi",
			wantExit:   1,
		},
		{
			name: "user function call",
			source: `fn add(a: int, b: int): int { return a + b; }
			          fn main(): int { println(add(2,3)); return 0; }`,
			wantOutput: "5\n",
			wantExit:   0,
		},
		{
			name: "while loop",
			source: `fn main(): int {
			            let i: int = 0;
			            while (i < 3) { println(i); i = i + 1; }
			            return 0;
			          }`,
			wantOutput: "0\n1\n2\n",
			wantExit:   0,
		},
		{
			name: "fixed-size array",
			source: `fn main(): int {
			            let xs: int[3];
			            xs[0]=10; xs[1]=20; xs[2]=30;
			            println(xs[1]);
			            return 0;
			          }`,
			wantOutput: "20\n",
			wantExit:   0,
		},
		{
			name: "logical-and short-circuits",
			source: `fn side(): int { println("boom"); return 1; }
			          fn main(): int {
			            if (false && side() == 1) { println("x"); }
			            return 0;
			          }`,
			wantOutput: "",
			wantExit:   0,
		},
		{
			name: "logical-or short-circuits",
			source: `fn side(): int { println("boom"); return 1; }
			          fn main(): int {
			            if (true || side() == 1) { println("x"); }
			            return 0;
			          }`,
			wantOutput: "x\n",
			wantExit:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, err := Compile(tt.source)
			require.NoError(t, err)

			var out strings.Builder
			result := Run(program, &out, nil)

			require.Equal(t, Finished, result.Outcome)
			require.Equal(t, tt.wantExit, result.ExitCode)
			require.Equal(t, tt.wantOutput, out.String())
		})
	}
}

func TestDivisionByZeroIsARuntimeError(t *testing.T) {
	source := `fn main(): int {
	             let a: int = 10;
	             let b: int = 0;
	             println(a / b);
	             return 0;
	           }`

	program, err := Compile(source)
	require.NoError(t, err)

	var out strings.Builder
	result := Run(program, &out, nil)

	require.Equal(t, Errored, result.Outcome)
	require.ErrorContains(t, result.Err, "division by zero")
	require.Empty(t, out.String())
}

func TestCancellationStopsBeforeCompletion(t *testing.T) {
	// A tight loop that would otherwise run forever; the cancel token is
	// already flipped when Run starts, and Run must stop with Stopped
	// rather than ever reaching RET.
	source := `fn main(): int {
	             let i: int = 0;
	             while (i < 1) { i = i; }
	             return 0;
	           }`

	program, err := Compile(source)
	require.NoError(t, err)

	cancel := NewCancelToken()
	cancel.Cancel()

	var out strings.Builder
	result := Run(program, &out, cancel)

	require.Equal(t, Stopped, result.Outcome)
	require.Empty(t, out.String())
}

func TestCompileRejectsMissingMain(t *testing.T) {
	_, err := Compile(`fn helper(): int { return 1; }`)
	require.Error(t, err)
}

func TestCompileRejectsSyntaxError(t *testing.T) {
	_, err := Compile(`fn main(): int { return }`)
	require.Error(t, err)
}

func TestCheckValidatesWithoutRunning(t *testing.T) {
	require.NoError(t, Check(`fn main(): int { return 0; }`))
	require.Error(t, Check(`fn main(): bool { return 0; }`))
}
