package catalog

import (
	"reflect"
	"testing"

	"gorm.io/datatypes"
)

func metricWithExpression(raw string) *Metric {
	return &Metric{Code: "m", ExpressionJSON: datatypes.JSON([]byte(raw))}
}

func TestExtractSeriesCodes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "simple ratio",
			raw:  `{"op":"ratio","left":{"seriesCode":"a"},"right":{"seriesCode":"b"}}`,
			want: []string{"a", "b"},
		},
		{
			name: "deduplicates preserving first appearance",
			raw:  `{"op":"add","left":{"seriesCode":"a"},"right":{"op":"ratio","left":{"seriesCode":"b"},"right":{"seriesCode":"a"}}}`,
			want: []string{"a", "b"},
		},
		{
			name: "window op recurses into series",
			raw:  `{"op":"sma","series":{"op":"ratio","left":{"seriesCode":"x"},"right":{"seriesCode":"y"}},"window":7}`,
			want: []string{"x", "y"},
		},
		{
			name: "composite collects only top-level refs",
			raw:  `{"op":"sum","operands":[{"seriesCode":"a"},{"op":"ratio","left":{"seriesCode":"hidden"},"right":{"seriesCode":"hidden2"}},{"seriesCode":"b"}]}`,
			want: []string{"a", "b"},
		},
		{
			name: "single leaf",
			raw:  `{"seriesCode":"solo"}`,
			want: []string{"solo"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSeriesCodes(metricWithExpression(tt.raw))
			if err != nil {
				t.Fatalf("ExtractSeriesCodes: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractSeriesCodesParseError(t *testing.T) {
	if _, err := ExtractSeriesCodes(metricWithExpression(`{"bogus":true}`)); err == nil {
		t.Fatal("expected error for malformed expression")
	}
}
