package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ValidateMetric checks a metric definition: non-empty code, a declared
// expression type whose shape matches the stored tree, known ops, positive
// scale, positive integer window, and well-formed operands all the way down.
// Used before a metric can ever produce runs.
func ValidateMetric(m *Metric) error {
	if strings.TrimSpace(m.Code) == "" {
		return &ValidationError{Field: "code", Message: "metric code is required and cannot be empty"}
	}
	if m.ExpressionType == "" {
		return &ValidationError{Field: "expressionType", Message: "expression type is required"}
	}

	expr, err := ParseExpression(m.ExpressionJSON)
	if err != nil {
		return err
	}

	switch m.ExpressionType {
	case ExpressionSeriesMath:
		node, ok := expr.(SeriesMath)
		if !ok {
			return &ValidationError{Field: "expressionJson", Message: "expression type is 'series_math' but expressionJson does not match series_math structure"}
		}
		return validateSeriesMath(node, "expressionJson")
	case ExpressionWindowOp:
		node, ok := expr.(WindowOp)
		if !ok {
			return &ValidationError{Field: "expressionJson", Message: "expression type is 'window_op' but expressionJson does not match window_op structure"}
		}
		return validateWindowOp(node, "expressionJson")
	case ExpressionComposite:
		node, ok := expr.(Composite)
		if !ok {
			return &ValidationError{Field: "expressionJson", Message: "expression type is 'composite' but expressionJson does not match composite structure"}
		}
		return validateComposite(node, "expressionJson")
	}
	return &ValidationError{Field: "expressionType", Message: fmt.Sprintf("unknown expression type: %s", m.ExpressionType)}
}

func validateNode(expr Expression, path string) error {
	switch node := expr.(type) {
	case SeriesRef:
		if strings.TrimSpace(node.SeriesCode) == "" {
			return &ValidationError{Field: path + ".seriesCode", Message: "series code must be a non-empty string"}
		}
		return nil
	case SeriesMath:
		return validateSeriesMath(node, path)
	case WindowOp:
		return validateWindowOp(node, path)
	case Composite:
		return validateComposite(node, path)
	}
	return &ValidationError{Field: path, Message: "invalid expression node"}
}

func validateSeriesMath(node SeriesMath, path string) error {
	if node.Op == "" {
		return &ValidationError{Field: path + ".op", Message: "series math expression must have an 'op' field"}
	}
	if !SeriesMathOps[node.Op] {
		return &ValidationError{Field: path + ".op", Message: fmt.Sprintf("invalid series math operation: %s. Valid operations: %s", node.Op, opList(SeriesMathOps))}
	}
	if err := validateNode(node.Left, path+".left"); err != nil {
		return err
	}
	if err := validateNode(node.Right, path+".right"); err != nil {
		return err
	}
	if node.Scale != nil && *node.Scale <= 0 {
		return &ValidationError{Field: path + ".scale", Message: "scale must be a positive number if provided"}
	}
	return nil
}

func validateWindowOp(node WindowOp, path string) error {
	if node.Op == "" {
		return &ValidationError{Field: path + ".op", Message: "window operation expression must have an 'op' field"}
	}
	if !WindowOps[node.Op] {
		return &ValidationError{Field: path + ".op", Message: fmt.Sprintf("invalid window operation: %s. Valid operations: %s", node.Op, opList(WindowOps))}
	}
	if node.Window < 1 || node.Window != math.Trunc(node.Window) {
		return &ValidationError{Field: path + ".window", Message: "window must be a positive integer"}
	}
	return validateNode(node.Series, path+".series")
}

func validateComposite(node Composite, path string) error {
	if node.Op == "" {
		return &ValidationError{Field: path + ".op", Message: "composite expression must have an 'op' field"}
	}
	if !CompositeOps[node.Op] {
		return &ValidationError{Field: path + ".op", Message: fmt.Sprintf("invalid composite operation: %s. Valid operations: %s", node.Op, opList(CompositeOps))}
	}
	if len(node.Operands) == 0 {
		return &ValidationError{Field: path + ".operands", Message: "composite expression must have at least one operand"}
	}
	for i, operand := range node.Operands {
		if err := validateNode(operand, fmt.Sprintf("%s.operands[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateWindows is the narrower emission-time safety check: every window_op
// node reachable anywhere in the tree must carry a window value >= 1. It
// guards run emission against definitions corrupted after full validation.
func ValidateWindows(expr Expression) error {
	return validateWindows(expr, "expressionJson")
}

func validateWindows(expr Expression, path string) error {
	switch node := expr.(type) {
	case SeriesMath:
		if err := validateWindows(node.Left, path+".left"); err != nil {
			return err
		}
		return validateWindows(node.Right, path+".right")
	case WindowOp:
		if node.Window < 1 {
			return &ValidationError{Field: path, Message: fmt.Sprintf("window_op has missing or invalid window value: %v. Window must be a positive integer >= 1", node.Window)}
		}
		return validateWindows(node.Series, path+".series")
	case Composite:
		for i, operand := range node.Operands {
			if err := validateWindows(operand, fmt.Sprintf("%s.operands[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func opList(ops map[string]bool) string {
	names := make([]string, 0, len(ops))
	for op := range ops {
		names = append(names, op)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
