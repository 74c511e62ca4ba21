package hir

import "strconv"

// Location and Span follow the teacher's internal/ast/span.go line:column
// model verbatim; HIR diagnostics need nothing richer than what escalier's
// own source-mapped spans already provide.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return strconv.Itoa(l.Line) + ":" + strconv.Itoa(l.Column)
}

type Span struct {
	Start    Location
	End      Location
	SourceID int
}

func (s Span) String() string { return s.Start.String() + "-" + s.End.String() }

func MergeSpans(a, b Span) Span {
	if a.Start.Line < b.Start.Line || (a.Start.Line == b.Start.Line && a.Start.Column < b.Start.Column) {
		return Span{Start: a.Start, End: b.End, SourceID: a.SourceID}
	}
	return Span{Start: b.Start, End: a.End, SourceID: a.SourceID}
}

var NoSpan = Span{SourceID: -1}
