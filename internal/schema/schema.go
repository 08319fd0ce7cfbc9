package schema

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Kind discriminates the three storage families a column can have.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	}
	return "unknown"
}

// IntWidth is a fixed-width integer storage class, narrowest first.
type IntWidth int

const (
	TinyInt IntWidth = iota
	SmallInt
	Int
	BigInt
)

// FloatWidth selects between single and double precision storage.
type FloatWidth int

const (
	FloatSingle FloatWidth = iota
	FloatDouble
)

const (
	// stringHeadroom is added to the longest observed value so slightly
	// longer future values fit without a schema migration.
	stringHeadroom = 5

	// varcharCeiling is the longest observed length still stored as
	// VARCHAR; anything longer becomes TEXT.
	varcharCeiling = 255
)

// Column is the typed descriptor for one table column: kind plus width or
// capacity. Descriptors are computed once from observed values and fixed
// before the table is created.
type Column struct {
	Name       string
	Kind       Kind
	IntWidth   IntWidth
	FloatWidth FloatWidth

	// Capacity is the VARCHAR capacity for string columns; 0 means TEXT.
	Capacity int
}

// SQLType renders the storage type for a CREATE TABLE column definition.
func (c Column) SQLType() string {
	switch c.Kind {
	case KindInteger:
		switch c.IntWidth {
		case TinyInt:
			return "TINYINT"
		case SmallInt:
			return "SMALLINT"
		case Int:
			return "INT"
		default:
			return "BIGINT"
		}
	case KindFloat:
		if c.FloatWidth == FloatSingle {
			return "FLOAT"
		}
		return "DOUBLE"
	default:
		if c.Capacity == 0 {
			return "TEXT"
		}
		return fmt.Sprintf("VARCHAR(%d)", c.Capacity)
	}
}

// InferInteger picks the narrowest integer class covering every observed
// value. An empty column falls back to BIGINT rather than failing.
func InferInteger(name string, values []int64) Column {
	c := Column{Name: name, Kind: KindInteger, IntWidth: BigInt}
	if len(values) == 0 {
		return c
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	c.IntWidth = intWidthFor(min, max)
	return c
}

// intWidthFor picks the narrowest class whose range strictly contains
// [min, max]. A bound sitting exactly on a class limit takes the next
// class up: the margin is headroom for future values, not for data
// already seen.
func intWidthFor(min, max int64) IntWidth {
	switch {
	case min > math.MinInt8 && max < math.MaxInt8:
		return TinyInt
	case min > math.MinInt16 && max < math.MaxInt16:
		return SmallInt
	case min > math.MinInt32 && max < math.MaxInt32:
		return Int
	default:
		return BigInt
	}
}

// InferFloat chooses FLOAT when every observed value survives a float32
// round trip, DOUBLE otherwise. An empty column falls back to DOUBLE.
func InferFloat(name string, values []float64) Column {
	c := Column{Name: name, Kind: KindFloat, FloatWidth: FloatDouble}
	if len(values) == 0 {
		return c
	}

	for _, v := range values {
		if float64(float32(v)) != v {
			return c
		}
	}
	c.FloatWidth = FloatSingle
	return c
}

// InferString sizes a VARCHAR to the longest observed value plus headroom,
// switching to TEXT once values exceed the VARCHAR ceiling. Lengths are
// counted in runes to match how the values read, not their encoded size.
// An empty column falls back to TEXT.
func InferString(name string, values []string) Column {
	c := Column{Name: name, Kind: KindString}
	if len(values) == 0 {
		return c
	}

	maxLen := 0
	for _, v := range values {
		if n := utf8.RuneCountInString(v); n > maxLen {
			maxLen = n
		}
	}
	if maxLen > varcharCeiling {
		return c
	}
	c.Capacity = maxLen + stringHeadroom
	return c
}

// FixedString declares a string column with a fixed capacity, bypassing
// inference. Used for identifier columns whose size is part of the schema
// contract rather than a property of the sampled data.
func FixedString(name string, capacity int) Column {
	return Column{Name: name, Kind: KindString, Capacity: capacity}
}
