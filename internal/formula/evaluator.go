package formula

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/suncrest-energy/solarquote-backend/pkg/errors"
)

// The evaluator accepts a deliberately small grammar: arithmetic, comparison,
// ternary conditionals and min/max over named float variables. No assignment,
// no loops, no calls beyond the two whitelisted functions. Admin formulas are
// pricing rules, not programs.

const maxExpressionLength = 500

// Evaluate runs the expression against the provided variables and returns the
// result rounded to 2 decimal places, half up. Unknown variables read as 0.
// Disallowed tokens and non-finite results return a FORMULA_ERROR.
func Evaluate(expression string, vars map[string]float64) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeFormula, "formula is empty")
	}
	if len(trimmed) > maxExpressionLength {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeFormula, "formula exceeds maximum length")
	}

	tokens, err := lex(trimmed)
	if err != nil {
		return decimal.Zero, err
	}

	p := &parser{tokens: tokens, vars: vars}
	result, err := p.parseTernary()
	if err != nil {
		return decimal.Zero, err
	}
	if !p.atEnd() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeFormula, fmt.Sprintf("unexpected token %q", p.peek().text))
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeFormula, "formula produced a non-finite result")
	}

	return decimal.NewFromFloat(result).Round(2), nil
}

// Validate evaluates the expression against a canonical sample variable set.
// It reports failure without side effects so admins can test a formula before
// it goes live.
func Validate(expression string) error {
	_, err := Evaluate(expression, SampleVariables())
	return err
}

// SampleVariables is the canonical variable set used by Validate. It covers
// every variable the rebate aggregator exposes.
func SampleVariables() map[string]float64 {
	return map[string]float64{
		"systemSizeKw":   6.6,
		"panelCount":     16,
		"batterySizeKwh": 13.5,
		"batteryCost":    9000,
		"panelCost":      4800,
		"inverterCost":   2200,
		"subtotal":       18500,
	}
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdent
	tokenOp
	tokenLParen
	tokenRParen
	tokenComma
	tokenQuestion
	tokenColon
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := rune(input[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(input) && (input[j] >= '0' && input[j] <= '9' || input[j] == '.') {
				j++
			}
			value, err := strconv.ParseFloat(input[i:j], 64)
			if err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeFormula, fmt.Sprintf("invalid number %q", input[i:j]))
			}
			tokens = append(tokens, token{kind: tokenNumber, num: value, text: input[i:j]})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(input) && (unicode.IsLetter(rune(input[j])) || unicode.IsDigit(rune(input[j])) || input[j] == '_') {
				j++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: input[i:j]})
			i = j
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")"})
			i++
		case c == ',':
			tokens = append(tokens, token{kind: tokenComma, text: ","})
			i++
		case c == '?':
			tokens = append(tokens, token{kind: tokenQuestion, text: "?"})
			i++
		case c == ':':
			tokens = append(tokens, token{kind: tokenColon, text: ":"})
			i++
		case strings.ContainsRune("+-*/", c):
			tokens = append(tokens, token{kind: tokenOp, text: string(c)})
			i++
		case strings.ContainsRune("<>=!", c):
			j := i + 1
			if j < len(input) && input[j] == '=' {
				j++
			}
			op := input[i:j]
			if op == "=" || op == "!" {
				return nil, pkgerrors.New(pkgerrors.CodeFormula, fmt.Sprintf("disallowed token %q", op))
			}
			tokens = append(tokens, token{kind: tokenOp, text: op})
			i = j
		default:
			return nil, pkgerrors.New(pkgerrors.CodeFormula, fmt.Sprintf("disallowed token %q", string(c)))
		}
	}
	if len(tokens) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeFormula, "formula is empty")
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
	vars   map[string]float64
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() token {
	if p.atEnd() {
		return token{}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) expect(kind tokenKind, what string) error {
	if p.atEnd() || p.peek().kind != kind {
		return pkgerrors.New(pkgerrors.CodeFormula, fmt.Sprintf("expected %s", what))
	}
	p.pos++
	return nil
}

// parseTernary handles cond ? a : b, the lowest-precedence construct.
func (p *parser) parseTernary() (float64, error) {
	cond, err := p.parseComparison()
	if err != nil {
		return 0, err
	}
	if p.atEnd() || p.peek().kind != tokenQuestion {
		return cond, nil
	}
	p.next()
	ifTrue, err := p.parseTernary()
	if err != nil {
		return 0, err
	}
	if err := p.expect(tokenColon, `":"`); err != nil {
		return 0, err
	}
	ifFalse, err := p.parseTernary()
	if err != nil {
		return 0, err
	}
	if cond != 0 {
		return ifTrue, nil
	}
	return ifFalse, nil
}

func (p *parser) parseComparison() (float64, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return 0, err
	}
	for !p.atEnd() && p.peek().kind == tokenOp {
		op := p.peek().text
		if op != ">" && op != "<" && op != ">=" && op != "<=" && op != "==" && op != "!=" {
			break
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return 0, err
		}
		left = boolToFloat(compare(op, left, right))
	}
	return left, nil
}

func (p *parser) parseAdditive() (float64, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return 0, err
	}
	for !p.atEnd() && p.peek().kind == tokenOp {
		op := p.peek().text
		if op != "+" && op != "-" {
			break
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for !p.atEnd() && p.peek().kind == tokenOp {
		op := p.peek().text
		if op != "*" && op != "/" {
			break
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			left *= right
		} else {
			// division by zero surfaces as non-finite and is rejected
			// by the caller, not here
			left /= right
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (float64, error) {
	if !p.atEnd() && p.peek().kind == tokenOp && p.peek().text == "-" {
		p.next()
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (float64, error) {
	if p.atEnd() {
		return 0, pkgerrors.New(pkgerrors.CodeFormula, "unexpected end of formula")
	}
	t := p.next()
	switch t.kind {
	case tokenNumber:
		return t.num, nil
	case tokenIdent:
		if t.text == "min" || t.text == "max" {
			return p.parseMinMax(t.text)
		}
		// unknown variables read as 0 to tolerate schema drift
		return p.vars[t.text], nil
	case tokenLParen:
		value, err := p.parseTernary()
		if err != nil {
			return 0, err
		}
		if err := p.expect(tokenRParen, `")"`); err != nil {
			return 0, err
		}
		return value, nil
	default:
		return 0, pkgerrors.New(pkgerrors.CodeFormula, fmt.Sprintf("unexpected token %q", t.text))
	}
}

func (p *parser) parseMinMax(name string) (float64, error) {
	if err := p.expect(tokenLParen, `"("`); err != nil {
		return 0, err
	}
	first, err := p.parseTernary()
	if err != nil {
		return 0, err
	}
	if err := p.expect(tokenComma, `","`); err != nil {
		return 0, err
	}
	second, err := p.parseTernary()
	if err != nil {
		return 0, err
	}
	if err := p.expect(tokenRParen, `")"`); err != nil {
		return 0, err
	}
	if name == "min" {
		return math.Min(first, second), nil
	}
	return math.Max(first, second), nil
}

func compare(op string, left, right float64) bool {
	switch op {
	case ">":
		return left > right
	case "<":
		return left < right
	case ">=":
		return left >= right
	case "<=":
		return left <= right
	case "==":
		return left == right
	default:
		return left != right
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
