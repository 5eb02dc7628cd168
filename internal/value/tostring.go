package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// invariantPrinter renders numbers under the undefined (locale-neutral)
// tag, so formatting never depends on the host's environment — the
// interpreter's numeric output must be the same on every machine.
var invariantPrinter = message.NewPrinter(language.Und)

// foldCaser implements the very-loose equality rung's fold-invariant
// string comparison (§3).
var foldCaser = cases.Fold()

// ToStringValue renders v the way `toString`, `?`-statement printing,
// and very-loose equality all need (§3, §4.1, §7).
func ToStringValue(v Value) string {
	switch v.Kind {
	case KindNumber:
		return formatNumber(v.Num)
	case KindString:
		return v.Str
	case KindBoolean:
		return v.Bool.String()
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindArray:
		return formatArray(v.Arr)
	case KindObject:
		if v.Obj == nil {
			return "<object>"
		}
		return fmt.Sprintf("<%s instance>", v.Obj.ClassName())
	case KindMethod:
		if v.Method == nil {
			return "<method>"
		}
		return fmt.Sprintf("<%s.%s>", v.Method.ClassName(), v.Method.MethodName())
	default:
		return ""
	}
}

func formatArray(a *Array) string {
	keys := a.Keys()
	elems := make([]string, len(keys))
	for i, k := range keys {
		v, _ := a.Get(k)
		elems[i] = ToStringValue(v)
	}
	return "[" + strings.Join(elems, ", ") + "]"
}

// formatNumber renders x with invariant locale and shortest round-trip
// form (§4.1). golang.org/x/text/number does the locale-invariant
// rendering; strconv.FormatFloat supplies the shortest-round-trip
// digit count x/text/number has no notion of, and is also the fallback
// whenever the x/text rendering can't reproduce x exactly (e.g.
// scientific notation, which number.Decimal does not emit).
func formatNumber(x float64) string {
	switch {
	case math.IsNaN(x):
		return "NaN"
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	}

	shortest := strconv.FormatFloat(x, 'g', -1, 64)
	if strings.ContainsAny(shortest, "eE") {
		// x/text/number renders plain decimals, not scientific notation.
		return shortest
	}

	scale := fractionDigits(shortest)
	rendered := invariantPrinter.Sprintf("%v", number.Decimal(x, number.Scale(scale), number.NoSeparator()))
	if f, err := strconv.ParseFloat(rendered, 64); err != nil || f != x {
		return shortest
	}
	return rendered
}

func fractionDigits(decimal string) int {
	dot := strings.IndexByte(decimal, '.')
	if dot < 0 {
		return 0
	}
	return len(decimal) - dot - 1
}

// foldEqual compares a and b ignoring case, the very-loose equality
// rung's "stringwise compare after toString" rule (§3).
func foldEqual(a, b string) bool {
	return foldCaser.String(a) == foldCaser.String(b)
}
