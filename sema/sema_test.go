package sema

import (
	"testing"

	"qlang/lexer"
	"qlang/parser"
)

func analyze(t *testing.T, source string) error {
	t.Helper()
	prog, err := parser.Parse(lexer.New(source).Scan())
	if err != nil {
		t.Fatalf("unexpected syntax error: %v", err)
	}
	_, err = Analyze(prog)
	return err
}

func TestValidPrograms(t *testing.T) {
	valid := []string{
		`fn main(): int { return 0; }`,
		`fn main(): void { println(1); }`,
		`fn add(a: int, b: int): int { return a + b; }
		 fn main(): int { return add(1, 2); }`,
		`fn main(): int { let xs: int[4]; xs[0] = 1; return xs[0]; }`,
		`fn main(): int { let x: int = 1; let p: ptr = &x; return load16(p); }`,
	}
	for _, src := range valid {
		if err := analyze(t, src); err != nil {
			t.Errorf("Analyze(%q) returned error: %v", src, err)
		}
	}
}

func TestMissingMainIsSemanticError(t *testing.T) {
	err := analyze(t, `fn helper(): int { return 1; }`)
	if err == nil {
		t.Fatal("expected a semantic error for missing main")
	}
}

func TestDuplicateFunctionNameIsSemanticError(t *testing.T) {
	err := analyze(t, `fn f(): int { return 0; }
	                    fn f(): int { return 1; }
	                    fn main(): int { return 0; }`)
	if err == nil {
		t.Fatal("expected a semantic error for duplicate function")
	}
}

func TestBuiltinNameCannotBeRedeclared(t *testing.T) {
	err := analyze(t, `fn load16(p: ptr): int { return 0; }
	                    fn main(): int { return 0; }`)
	if err == nil {
		t.Fatal("expected a semantic error for shadowing a built-in")
	}
}

func TestArithmeticRequiresTwoInts(t *testing.T) {
	err := analyze(t, `fn main(): int { let x: bool = true; return x + 1; }`)
	if err == nil {
		t.Fatal("expected a semantic error for bool + int")
	}
}

func TestComparisonRequiresEqualTypes(t *testing.T) {
	err := analyze(t, `fn main(): int { if (1 == true) { } return 0; }`)
	if err == nil {
		t.Fatal("expected a semantic error for int == bool")
	}
}

func TestAssignTypeMustMatchExactly(t *testing.T) {
	err := analyze(t, `fn main(): int { let x: int = 1; x = true; return x; }`)
	if err == nil {
		t.Fatal("expected a semantic error for assigning bool to an int")
	}
}

func TestCallArityMismatchIsSemanticError(t *testing.T) {
	err := analyze(t, `fn f(a: int): int { return a; }
	                    fn main(): int { return f(1, 2); }`)
	if err == nil {
		t.Fatal("expected a semantic error for arity mismatch")
	}
}

func TestNonVoidFunctionRequiresTopLevelReturn(t *testing.T) {
	err := analyze(t, `fn f(): int { if (true) { return 1; } }
	                    fn main(): int { return f(); }`)
	if err == nil {
		t.Fatal("expected a semantic error: return only inside if, not top-level")
	}
}

func TestAddressOfRejectsNonLvalue(t *testing.T) {
	err := analyze(t, `fn main(): int { let p: ptr = &1; return 0; }`)
	if err == nil {
		t.Fatal("expected a semantic error: cannot take the address of a literal")
	}
}

func TestArrayPushAndPopSpecialCasing(t *testing.T) {
	err := analyze(t, `fn main(): int {
	                      let xs: int[4];
	                      let len: int = 0;
	                      len = array_push(xs, len, 7);
	                      return array_pop(xs, len);
	                    }`)
	if err != nil {
		t.Errorf("unexpected error analyzing array_push/array_pop: %v", err)
	}
}

func TestBareExpressionStatementMustBeVoidCall(t *testing.T) {
	err := analyze(t, `fn f(): int { return 1; }
	                    fn main(): int { f(); return 0; }`)
	if err == nil {
		t.Fatal("expected a semantic error: discarding f()'s int result as a statement")
	}
}
