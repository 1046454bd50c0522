// Recursive descent parser: tokens -> AST. Each function body begins with
// the "fn" keyword; expressions are parsed by precedence climbing.
package parser

import (
	"fmt"

	"qlang/ast"
	"qlang/token"
	"qlang/types"
)

type Parser struct {
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) peek() token.Token { return p.tokens[p.pos] }

func (p *Parser) previous() token.Token { return p.tokens[p.pos-1] }

func (p *Parser) isAtEnd() bool { return p.peek().Kind == token.EOF }

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *Parser) check(kind token.Kind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(kind token.Kind, message string) (token.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	cur := p.peek()
	return token.Token{}, CreateSyntaxError(cur.Line, cur.Column, message)
}

// Parse parses the full token stream into a Program. It halts at the first
// unexpected token rather than attempting error recovery.
func Parse(tokens []token.Token) (*ast.Program, error) {
	p := New(tokens)
	program := &ast.Program{}
	for !p.isAtEnd() {
		fn, err := p.function()
		if err != nil {
			return nil, err
		}
		program.Functions = append(program.Functions, fn)
	}
	return program, nil
}

func (p *Parser) function() (*ast.Function, error) {
	if _, err := p.consume(token.FN, "expected 'fn'"); err != nil {
		return nil, err
	}
	name, err := p.consume(token.IDENTIFIER, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.LPAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}

	var params []ast.Param
	if !p.check(token.RPAREN) {
		for {
			pname, err := p.consume(token.IDENTIFIER, "expected parameter name")
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.COLON, "expected ':' after parameter name"); err != nil {
				return nil, err
			}
			ptype, err := p.parseType()
			if err != nil {
				return nil, err
			}
			params = append(params, ast.Param{Name: pname, Type: ptype})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after parameters"); err != nil {
		return nil, err
	}

	var returnType *types.Type
	if p.match(token.COLON) {
		rt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		returnType = &rt
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return &ast.Function{Name: name, Params: params, ReturnType: returnType, Body: body}, nil
}

// parseType accepts the scalar keywords, the "int[N]" array form, and a
// bare identifier. The identifier alternative is syntactically legal (it
// appears in the grammar) but never denotes a valid type: QL has no
// user-defined types beyond fixed-size int arrays, so the semantic
// analyzer always rejects it.
func (p *Parser) parseType() (types.Type, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.INT:
		p.advance()
		if p.match(token.LBRACKET) {
			sizeTok, err := p.consume(token.NUMBER, "expected array size")
			if err != nil {
				return types.Type{}, err
			}
			if _, err := p.consume(token.RBRACKET, "expected ']' after array size"); err != nil {
				return types.Type{}, err
			}
			n, _ := sizeTok.Literal.(int64)
			return types.Array(int(n)), nil
		}
		return types.Int, nil
	case token.BOOL:
		p.advance()
		return types.Bool, nil
	case token.STR:
		p.advance()
		return types.Str, nil
	case token.VOID:
		p.advance()
		return types.Void, nil
	case token.PTR:
		p.advance()
		return types.Ptr, nil
	case token.IDENTIFIER:
		p.advance()
		return types.Type{Kind: types.Invalid}, nil
	default:
		return types.Type{}, CreateSyntaxError(tok.Line, tok.Column, fmt.Sprintf("expected a type, got %q", tok.Lexeme))
	}
}

func (p *Parser) block() ([]ast.Stmt, error) {
	if _, err := p.consume(token.LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt, err := p.declaration()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) declaration() (ast.Stmt, error) {
	if p.match(token.LET) {
		return p.varDecl()
	}
	return p.statement()
}

func (p *Parser) varDecl() (ast.Stmt, error) {
	name, err := p.consume(token.IDENTIFIER, "expected variable name")
	if err != nil {
		return nil, err
	}

	var declaredType *types.Type
	if p.match(token.COLON) {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		declaredType = &t
	}

	var init ast.Expression
	if p.match(token.ASSIGN) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.consume(token.SEMICOLON, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}

	return &ast.VarDecl{Name: name, DeclaredType: declaredType, Init: init}, nil
}

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.match(token.PRINT):
		return p.printStmt(false)
	case p.match(token.PRINTLN):
		return p.printStmt(true)
	case p.match(token.RETURN):
		return p.returnStmt()
	case p.match(token.IF):
		return p.ifStmt()
	case p.match(token.WHILE):
		return p.whileStmt()
	case p.match(token.ASM):
		return p.asmStmt()
	case p.match(token.VM_ASM):
		return p.vmAsmStmt()
	default:
		return p.exprOrAssignStmt()
	}
}

func (p *Parser) printStmt(newline bool) (ast.Stmt, error) {
	if _, err := p.consume(token.LPAREN, "expected '(' after print"); err != nil {
		return nil, err
	}
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after print argument"); err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';'"); err != nil {
		return nil, err
	}
	if newline {
		return &ast.PrintLn{Value: value}, nil
	}
	return &ast.Print{Value: value}, nil
}

func (p *Parser) returnStmt() (ast.Stmt, error) {
	keyword := p.previous()
	var value ast.Expression
	if !p.check(token.SEMICOLON) {
		var err error
		value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after return"); err != nil {
		return nil, err
	}
	return &ast.Return{Keyword: keyword, Value: value}, nil
}

func (p *Parser) ifStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LPAREN, "expected '(' after if"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after condition"); err != nil {
		return nil, err
	}
	thenBlock, err := p.block()
	if err != nil {
		return nil, err
	}
	var elseBlock []ast.Stmt
	if p.match(token.ELSE) {
		elseBlock, err = p.block()
		if err != nil {
			return nil, err
		}
	}
	return &ast.If{Cond: cond, Then: thenBlock, Else: elseBlock}, nil
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LPAREN, "expected '(' after while"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after condition"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &ast.While{Cond: cond, Body: body}, nil
}

// asmStmt parses the opaque "asm STRING ;" form for the excluded 8086
// backend; the VM path never executes the text it carries.
func (p *Parser) asmStmt() (ast.Stmt, error) {
	strTok, err := p.consume(token.STRING, "expected a string literal after asm")
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(token.SEMICOLON, "expected ';' after asm statement"); err != nil {
		return nil, err
	}
	text, _ := strTok.Literal.(string)
	return &ast.AsmStmt{Text: text}, nil
}

// vmAsmStmt parses "vm_asm { line; line; ... }". Each line is a mnemonic
// identifier with an optional NUMBER/IDENTIFIER argument.
func (p *Parser) vmAsmStmt() (ast.Stmt, error) {
	if _, err := p.consume(token.LBRACE, "expected '{' after vm_asm"); err != nil {
		return nil, err
	}
	var instrs []ast.VmAsmInstr
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		op, err := p.consume(token.IDENTIFIER, "expected a vm_asm mnemonic")
		if err != nil {
			return nil, err
		}
		instr := ast.VmAsmInstr{Op: op}
		if !p.check(token.SEMICOLON) {
			instr.Arg = p.advance()
			instr.HasArg = true
		}
		if _, err := p.consume(token.SEMICOLON, "expected ';' after vm_asm instruction"); err != nil {
			return nil, err
		}
		instrs = append(instrs, instr)
	}
	if _, err := p.consume(token.RBRACE, "expected '}' to close vm_asm"); err != nil {
		return nil, err
	}
	return &ast.VmAsmStmt{Instrs: instrs}, nil
}

// exprOrAssignStmt parses `expr [ "=" expr ] ";"`. Assignment is not an
// expression in QL: it is recognized here, at statement level, and the
// semantic analyzer (not the parser) rejects illegal targets.
func (p *Parser) exprOrAssignStmt() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.match(token.ASSIGN) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.SEMICOLON, "expected ';' after assignment"); err != nil {
			return nil, err
		}
		return &ast.Assign{Target: expr, Value: value}, nil
	}

	if _, err := p.consume(token.SEMICOLON, "expected ';' after expression"); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expression: expr}, nil
}

// --- expressions, precedence climbing from lowest to highest ---

func (p *Parser) expression() (ast.Expression, error) { return p.or() }

func (p *Parser) or() (ast.Expression, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.match(token.OR) {
		op := p.previous()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = ast.NewLogical(left, op, right)
	}
	return left, nil
}

func (p *Parser) and() (ast.Expression, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(token.AND) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = ast.NewLogical(left, op, right)
	}
	return left, nil
}

func (p *Parser) equality() (ast.Expression, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.match(token.EQ, token.NOT_EQ) {
		op := p.previous()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left, op, right)
	}
	return left, nil
}

func (p *Parser) comparison() (ast.Expression, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.match(token.LT, token.LE, token.GT, token.GE) {
		op := p.previous()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left, op, right)
	}
	return left, nil
}

func (p *Parser) term() (ast.Expression, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left, op, right)
	}
	return left, nil
}

func (p *Parser) factor() (ast.Expression, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(token.STAR, token.SLASH) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(left, op, right)
	}
	return left, nil
}

// unary is right-associative and chainable over "- ! &".
func (p *Parser) unary() (ast.Expression, error) {
	if p.match(token.MINUS, token.BANG, token.AMP) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op.Kind == token.AMP {
			return ast.NewAddressOf(right), nil
		}
		return ast.NewUnary(op, right), nil
	}
	return p.postfix()
}

// postfix handles call "(args...)", only legal when the callee parsed so
// far is a bare identifier, and chainable index "[expr]", left to right.
func (p *Parser) postfix() (ast.Expression, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for {
		if p.check(token.LPAREN) {
			ident, ok := expr.(*ast.Identifier)
			if !ok {
				break
			}
			p.advance()
			args, err := p.callArgs()
			if err != nil {
				return nil, err
			}
			expr = ast.NewCall(ident.Name, args)
			continue
		}
		if p.match(token.LBRACKET) {
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.consume(token.RBRACKET, "expected ']' after index expression"); err != nil {
				return nil, err
			}
			expr = ast.NewIndex(expr, index)
			continue
		}
		break
	}
	return expr, nil
}

func (p *Parser) callArgs() ([]ast.Expression, error) {
	var args []ast.Expression
	if !p.check(token.RPAREN) {
		for {
			arg, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consume(token.RPAREN, "expected ')' after call arguments"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) primary() (ast.Expression, error) {
	switch {
	case p.match(token.TRUE):
		return ast.NewLiteral(true), nil
	case p.match(token.FALSE):
		return ast.NewLiteral(false), nil
	case p.match(token.NUMBER):
		return ast.NewLiteral(p.previous().Literal), nil
	case p.match(token.STRING):
		return ast.NewLiteral(p.previous().Literal), nil
	case p.match(token.IDENTIFIER):
		return ast.NewIdentifier(p.previous()), nil
	case p.match(token.LPAREN):
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(token.RPAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		tok := p.peek()
		return nil, CreateSyntaxError(tok.Line, tok.Column, fmt.Sprintf("unexpected token %q", tok.Lexeme))
	}
}
