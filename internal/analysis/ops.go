package analysis

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dsexplorer/internal/dataset"
)

// Op enumerates the summary operations a front end can request.
type Op string

const (
	OpShape               Op = "shape"
	OpColumns             Op = "columns"
	OpTypes               Op = "types"
	OpDescribe            Op = "describe"
	OpDescribeCategorical Op = "describe-categorical"
	OpValueCounts         Op = "value-counts"
	OpCorrelation         Op = "correlation"
	OpGroupCount          Op = "group-count"
)

// Ops lists every operation in display order.
var Ops = []Op{OpShape, OpColumns, OpTypes, OpDescribe, OpDescribeCategorical, OpValueCounts, OpCorrelation, OpGroupCount}

// ParseOp maps a name (case-insensitive, with a few aliases) to an Op.
func ParseOp(s string) (Op, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "dtypes":
		return OpTypes, nil
	case "corr":
		return OpCorrelation, nil
	case "summary":
		return OpDescribe, nil
	}
	for _, op := range Ops {
		if string(op) == name {
			return op, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOp, s)
}

// Request selects an operation and its arguments.
type Request struct {
	Op Op
	// Column is the value-counts column index; TargetColumn selects the last one.
	Column int
	// ColumnName, when set, takes precedence over Column.
	ColumnName string
	// By and Columns parametrise group-count.
	By      string
	Columns []string
}

// ShapeResult is the (rows, columns) pair.
type ShapeResult struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Result carries the output of one operation; only the field matching Op is set.
type Result struct {
	Op          Op                   `json:"op"`
	Shape       *ShapeResult         `json:"shape,omitempty"`
	Columns     []string             `json:"columns,omitempty"`
	Types       []ColumnType         `json:"types,omitempty"`
	Describe    []ColumnSummary      `json:"describe,omitempty"`
	Categorical []CategoricalSummary `json:"categorical,omitempty"`
	ValueCounts *ValueCounts         `json:"value_counts,omitempty"`
	Correlation *CorrelationMatrix   `json:"correlation,omitempty"`
	GroupCounts *GroupCounts         `json:"group_counts,omitempty"`
}

// Dispatch runs the requested operation against ds.
func Dispatch(ds *dataset.Dataset, req Request) (Result, error) {
	res := Result{Op: req.Op}
	switch req.Op {
	case OpShape:
		r, c := Shape(ds)
		res.Shape = &ShapeResult{Rows: r, Columns: c}
	case OpColumns:
		res.Columns = ColumnNames(ds)
	case OpTypes:
		res.Types = ColumnTypes(ds)
	case OpDescribe:
		res.Describe = Describe(ds)
	case OpDescribeCategorical:
		res.Categorical = DescribeCategorical(ds)
	case OpValueCounts:
		var (
			vc  *ValueCounts
			err error
		)
		if req.ColumnName != "" {
			vc, err = CountValuesByName(ds, req.ColumnName)
		} else {
			vc, err = CountValues(ds, req.Column)
		}
		if err != nil {
			return Result{}, err
		}
		res.ValueCounts = vc
	case OpCorrelation:
		res.Correlation = Correlate(ds)
	case OpGroupCount:
		gc, err := GroupCount(ds, req.By, req.Columns)
		if err != nil {
			return Result{}, err
		}
		res.GroupCounts = gc
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownOp, req.Op)
	}
	return res, nil
}
