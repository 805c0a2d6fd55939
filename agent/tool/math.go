package tool

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/trip-dining/agent/contract"
)

const maxExpressionLength = 512

type MathEvaluateOutput struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

func executeMathTool(tool string, args map[string]any) (contractx.ToolResult, error) {
	if _, ok := args["expression"]; !ok {
		return contractx.ToolResult{Tool: tool, Error: "expression is required"}, nil
	}
	expression, err := stringArg(args, "expression")
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: err.Error()}, nil
	}

	result, err := Evaluate(expression)
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: err.Error()}, nil
	}

	return contractx.ToolResult{
		Tool: tool,
		Result: MathEvaluateOutput{
			Expression: expression,
			Result:     result,
		},
	}, nil
}

// Evaluate computes an arithmetic expression over + - * / % ^ and
// parentheses. ^ binds right to left and tighter than unary minus on its
// left operand, so -2^2 is -4.
func Evaluate(expression string) (float64, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return 0, errors.New("expression is empty")
	}
	if len(expression) > maxExpressionLength {
		return 0, fmt.Errorf("expression is longer than %d characters", maxExpressionLength)
	}

	tokens, err := tokenize(expression)
	if err != nil {
		return 0, err
	}

	p := &exprParser{tokens: tokens}
	value, err := p.binary(0)
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return 0, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos)
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, errors.New("result is not a finite number")
	}
	return value, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokOperator
	tokLParen
	tokRParen
)

type token struct {
	kind  tokenKind
	text  string
	value float64
	pos   int
}

func tokenize(input string) ([]token, error) {
	var out []token
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case (ch >= '0' && ch <= '9') || ch == '.':
			start := i
			for i < len(input) && ((input[i] >= '0' && input[i] <= '9') || input[i] == '.' || input[i] == '_' || input[i] == ',') {
				i++
			}
			raw := strings.NewReplacer("_", "", ",", "").Replace(input[start:i])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q at position %d", input[start:i], start)
			}
			out = append(out, token{kind: tokNumber, text: input[start:i], value: v, pos: start})
		case strings.IndexByte("+-*/%^", ch) >= 0:
			out = append(out, token{kind: tokOperator, text: string(ch), pos: i})
			i++
		case ch == '(':
			out = append(out, token{kind: tokLParen, text: "(", pos: i})
			i++
		case ch == ')':
			out = append(out, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, fmt.Errorf("invalid character %q at position %d", ch, i)
		}
	}
	return append(out, token{kind: tokEOF, pos: len(input)}), nil
}

type operator struct {
	prec       int
	rightAssoc bool
}

var binaryOperators = map[string]operator{
	"+": {prec: 1},
	"-": {prec: 1},
	"*": {prec: 2},
	"/": {prec: 2},
	"%": {prec: 2},
	"^": {prec: 4, rightAssoc: true},
}

// unaryPrec sits between the multiplicative operators and ^.
const unaryPrec = 3

type exprParser struct {
	tokens []token
	pos    int
}

func (p *exprParser) peek() token { return p.tokens[p.pos] }

func (p *exprParser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *exprParser) binary(minPrec int) (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokOperator {
			return left, nil
		}
		op := binaryOperators[tok.text]
		if op.prec < minPrec {
			return left, nil
		}
		p.next()

		nextMin := op.prec + 1
		if op.rightAssoc {
			nextMin = op.prec
		}
		right, err := p.binary(nextMin)
		if err != nil {
			return 0, err
		}
		if left, err = apply(tok, left, right); err != nil {
			return 0, err
		}
	}
}

func (p *exprParser) unary() (float64, error) {
	tok := p.peek()
	if tok.kind == tokOperator && (tok.text == "-" || tok.text == "+") {
		p.next()
		v, err := p.binary(unaryPrec)
		if err != nil {
			return 0, err
		}
		if tok.text == "-" {
			return -v, nil
		}
		return v, nil
	}
	return p.primary()
}

func (p *exprParser) primary() (float64, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return tok.value, nil
	case tokLParen:
		v, err := p.binary(0)
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", closing.pos)
		}
		return v, nil
	case tokEOF:
		return 0, errors.New("unexpected end of expression")
	default:
		return 0, fmt.Errorf("unexpected %q at position %d", tok.text, tok.pos)
	}
}

func apply(op token, left, right float64) (float64, error) {
	switch op.text {
	case "+":
		return left + right, nil
	case "-":
		return left - right, nil
	case "*":
		return left * right, nil
	case "/":
		if right == 0 {
			return 0, errors.New("division by zero")
		}
		return left / right, nil
	case "%":
		if right == 0 {
			return 0, errors.New("modulo by zero")
		}
		return math.Mod(left, right), nil
	case "^":
		return math.Pow(left, right), nil
	default:
		return 0, fmt.Errorf("unknown operator %q at position %d", op.text, op.pos)
	}
}
