package record

import "strings"

// LiftKind is the closed set of canonical lifts. LiftUnrecognized carries
// the original source string in Lift.raw.
type LiftKind int

const (
	LiftUnrecognized LiftKind = iota
	LiftSquat
	LiftBench
	LiftDeadlift
	LiftTotal
)

var liftNames = map[LiftKind]string{
	LiftSquat:    "Squat",
	LiftBench:    "Bench",
	LiftDeadlift: "Deadlift",
	LiftTotal:    "Total",
}

// liftAliases maps short codes and canonical names to a lift.
var liftAliases = map[string]LiftKind{
	"S":        LiftSquat,
	"B":        LiftBench,
	"D":        LiftDeadlift,
	"T":        LiftTotal,
	"Squat":    LiftSquat,
	"Bench":    LiftBench,
	"Deadlift": LiftDeadlift,
	"Total":    LiftTotal,
}

// unrecognizedOrder places unknown lifts after Total.
const unrecognizedOrder = 99

// Lift is a normalized lift value.
type Lift struct {
	Kind LiftKind
	raw  string
}

// Canonical lifts.
var (
	Squat    = Lift{Kind: LiftSquat}
	Bench    = Lift{Kind: LiftBench}
	Deadlift = Lift{Kind: LiftDeadlift}
	Total    = Lift{Kind: LiftTotal}
)

// ParseLift normalizes a source lift value. Values outside the alias table
// come back as LiftUnrecognized holding the trimmed input.
func ParseLift(s string) Lift {
	v := strings.TrimSpace(s)
	if kind, ok := liftAliases[v]; ok {
		return Lift{Kind: kind}
	}
	return Lift{Kind: LiftUnrecognized, raw: v}
}

// String returns the canonical name, or the original value when unrecognized.
func (l Lift) String() string {
	if name, ok := liftNames[l.Kind]; ok {
		return name
	}
	return l.raw
}

// Recognized reports whether the lift is one of the four canonical lifts.
func (l Lift) Recognized() bool { return l.Kind != LiftUnrecognized }

// Order is the canonical display position: Squat, Bench, Deadlift, Total,
// then everything else.
func (l Lift) Order() int {
	if !l.Recognized() {
		return unrecognizedOrder
	}
	return int(l.Kind) - 1
}
