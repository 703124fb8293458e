package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
)

// parseLiteralDocument reads hand-edited or older snapshot documents that are
// valid JavaScript but not strict JSON: single quotes, unquoted keys, trailing
// commas, comments. The source is parsed, never run. Only assignments of
// literal values to module.exports are accepted.
func parseLiteralDocument(src string) (any, error) {
	program, err := parser.ParseFile(nil, DocumentFile, src, 0)
	if err != nil {
		return nil, err
	}

	var (
		result any
		found  bool
	)
	for _, stmt := range program.Body {
		switch s := stmt.(type) {
		case *ast.EmptyStatement:
			continue
		case *ast.ExpressionStatement:
			// directive prologue, e.g. 'use strict'
			if _, ok := s.Expression.(*ast.StringLiteral); ok {
				continue
			}
			assign, ok := s.Expression.(*ast.AssignExpression)
			if !ok || assign.Operator != token.ASSIGN || !isModuleExports(assign.Left) {
				return nil, errors.New("only assignments to module.exports are allowed")
			}
			value, err := literalValue(assign.Right)
			if err != nil {
				return nil, err
			}
			result, found = value, true
		default:
			return nil, fmt.Errorf("unsupported statement %T", stmt)
		}
	}

	if !found {
		return nil, nil
	}
	return result, nil
}

func isModuleExports(expr ast.Expression) bool {
	dot, ok := expr.(*ast.DotExpression)
	if !ok || dot.Identifier.Name != "exports" {
		return false
	}
	obj, ok := dot.Left.(*ast.Identifier)
	return ok && obj.Name == "module"
}

// literalValue converts a literal expression into the values encoding/json
// produces: map[string]any, []any, string, float64, bool and nil
func literalValue(expr ast.Expression) (any, error) {
	switch e := expr.(type) {
	case *ast.ObjectLiteral:
		obj := make(map[string]any, len(e.Value))
		for _, prop := range e.Value {
			keyed, ok := prop.(*ast.PropertyKeyed)
			if !ok || keyed.Computed || keyed.Kind != ast.PropertyKindValue {
				return nil, fmt.Errorf("unsupported object property %T", prop)
			}
			key, err := propertyKey(keyed.Key)
			if err != nil {
				return nil, err
			}
			value, err := literalValue(keyed.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			obj[key] = value
		}
		return obj, nil

	case *ast.ArrayLiteral:
		arr := make([]any, 0, len(e.Value))
		for _, item := range e.Value {
			// holes in sparse arrays ([1,,2]) are nil expressions
			if item == nil {
				arr = append(arr, nil)
				continue
			}
			value, err := literalValue(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		return arr, nil

	case *ast.StringLiteral:
		return string(e.Value), nil

	case *ast.TemplateLiteral:
		if e.Tag != nil || len(e.Expressions) > 0 {
			return nil, errors.New("template literals with substitutions are not allowed")
		}
		var b strings.Builder
		for _, el := range e.Elements {
			b.WriteString(string(el.Parsed))
		}
		return b.String(), nil

	case *ast.NumberLiteral:
		return numberValue(e)

	case *ast.BooleanLiteral:
		return e.Value, nil

	case *ast.NullLiteral:
		return nil, nil

	case *ast.Identifier:
		if e.Name == "undefined" {
			return nil, nil
		}
		return nil, fmt.Errorf("identifier %q is not a literal", e.Name)

	case *ast.UnaryExpression:
		if e.Postfix || (e.Operator != token.MINUS && e.Operator != token.PLUS) {
			return nil, fmt.Errorf("unsupported operator %s", e.Operator)
		}
		num, ok := e.Operand.(*ast.NumberLiteral)
		if !ok {
			return nil, errors.New("unary operators apply to numbers only")
		}
		f, err := numberValue(num)
		if err != nil {
			return nil, err
		}
		if e.Operator == token.MINUS {
			return -f, nil
		}
		return f, nil

	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

func propertyKey(expr ast.Expression) (string, error) {
	switch k := expr.(type) {
	case *ast.StringLiteral:
		return string(k.Value), nil
	case *ast.NumberLiteral:
		f, err := numberValue(k)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported property key %T", expr)
	}
}

func numberValue(n *ast.NumberLiteral) (float64, error) {
	switch v := n.Value.(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("unsupported number literal %s", n.Literal)
	}
}
