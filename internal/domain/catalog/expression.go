package catalog

import (
	"encoding/json"
	"fmt"
)

// ExpressionType discriminates the three top-level metric expression shapes.
type ExpressionType string

const (
	ExpressionSeriesMath ExpressionType = "series_math"
	ExpressionWindowOp   ExpressionType = "window_op"
	ExpressionComposite  ExpressionType = "composite"
)

// Operation enums per expression type.
var (
	SeriesMathOps = map[string]bool{"ratio": true, "multiply": true, "subtract": true, "add": true}
	WindowOps     = map[string]bool{"sma": true, "ema": true, "sum": true, "max": true, "min": true, "lag": true}
	CompositeOps  = map[string]bool{"sum": true, "avg": true, "max": true, "min": true}
)

// Expression is the closed union of metric expression nodes. A node is a
// SeriesRef leaf or one of the three operator shapes; classification follows
// the stored JSON's fields, not a discriminator column.
type Expression interface {
	isExpression()
}

// SeriesRef is a leaf reference to a raw input series.
type SeriesRef struct {
	SeriesCode string
}

// SeriesMath is a binary arithmetic node. Left and Right may be refs or
// nested expressions.
type SeriesMath struct {
	Op    string
	Left  Expression
	Right Expression
	Scale *float64
}

// WindowOp applies a rolling-window operation over its input. Window holds
// the raw JSON number; zero means the field was absent.
type WindowOp struct {
	Op     string
	Series Expression
	Window float64
}

// Composite folds a list of operands with one aggregate op.
type Composite struct {
	Op       string
	Operands []Expression
}

func (SeriesRef) isExpression()  {}
func (SeriesMath) isExpression() {}
func (WindowOp) isExpression()   {}
func (Composite) isExpression()  {}

// ParseExpression deserializes a stored expression tree. Nodes are classified
// by shape: a seriesCode field makes a leaf; otherwise op plus left/right is
// series_math, op plus series is window_op, op plus operands is composite.
func ParseExpression(raw []byte) (Expression, error) {
	if len(raw) == 0 {
		return nil, &ValidationError{Field: "expressionJson", Message: "expression JSON is required"}
	}
	return parseNode(raw, "expressionJson")
}

func parseNode(raw []byte, path string) (Expression, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &ValidationError{Field: path, Message: fmt.Sprintf("invalid expression node: %v", err)}
	}

	if codeRaw, ok := fields["seriesCode"]; ok {
		var code string
		if err := json.Unmarshal(codeRaw, &code); err != nil {
			return nil, &ValidationError{Field: path + ".seriesCode", Message: "seriesCode must be a string"}
		}
		return SeriesRef{SeriesCode: code}, nil
	}

	opRaw, ok := fields["op"]
	if !ok {
		return nil, &ValidationError{Field: path, Message: "node must be a series reference (with seriesCode) or an expression (with op)"}
	}
	var op string
	if err := json.Unmarshal(opRaw, &op); err != nil {
		return nil, &ValidationError{Field: path + ".op", Message: "op must be a string"}
	}

	_, hasLeft := fields["left"]
	_, hasRight := fields["right"]
	_, hasSeries := fields["series"]
	_, hasOperands := fields["operands"]

	switch {
	case hasLeft && hasRight:
		left, err := parseNode(fields["left"], path+".left")
		if err != nil {
			return nil, err
		}
		right, err := parseNode(fields["right"], path+".right")
		if err != nil {
			return nil, err
		}
		node := SeriesMath{Op: op, Left: left, Right: right}
		if scaleRaw, ok := fields["scale"]; ok {
			var scale float64
			if err := json.Unmarshal(scaleRaw, &scale); err != nil {
				return nil, &ValidationError{Field: path + ".scale", Message: "scale must be a number"}
			}
			node.Scale = &scale
		}
		return node, nil

	case hasSeries:
		series, err := parseNode(fields["series"], path+".series")
		if err != nil {
			return nil, err
		}
		node := WindowOp{Op: op, Series: series}
		if windowRaw, ok := fields["window"]; ok {
			if err := json.Unmarshal(windowRaw, &node.Window); err != nil {
				return nil, &ValidationError{Field: path + ".window", Message: "window must be a number"}
			}
		}
		return node, nil

	case hasOperands:
		var operandsRaw []json.RawMessage
		if err := json.Unmarshal(fields["operands"], &operandsRaw); err != nil {
			return nil, &ValidationError{Field: path + ".operands", Message: "operands must be an array"}
		}
		node := Composite{Op: op, Operands: make([]Expression, 0, len(operandsRaw))}
		for i, operandRaw := range operandsRaw {
			operand, err := parseNode(operandRaw, fmt.Sprintf("%s.operands[%d]", path, i))
			if err != nil {
				return nil, err
			}
			node.Operands = append(node.Operands, operand)
		}
		return node, nil
	}

	return nil, &ValidationError{Field: path, Message: "invalid expression structure: expected left/right, series, or operands"}
}
