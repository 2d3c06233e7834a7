package catalog

// ExtractSeriesCodes returns the deduplicated series codes a metric's
// expression reads. series_math and window_op nodes are walked recursively;
// composite operands contribute only their top-level series references;
// nested operand expressions are deliberately not walked.
func ExtractSeriesCodes(m *Metric) ([]string, error) {
	expr, err := m.Expression()
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var codes []string
	collect := func(code string) {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	walkSeries(expr, collect)
	return codes, nil
}

func walkSeries(expr Expression, collect func(string)) {
	switch node := expr.(type) {
	case SeriesRef:
		collect(node.SeriesCode)
	case SeriesMath:
		walkSeries(node.Left, collect)
		walkSeries(node.Right, collect)
	case WindowOp:
		walkSeries(node.Series, collect)
	case Composite:
		for _, operand := range node.Operands {
			if ref, ok := operand.(SeriesRef); ok {
				collect(ref.SeriesCode)
			}
		}
	}
}
