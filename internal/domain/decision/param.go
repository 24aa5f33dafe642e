package decision

import "fmt"

type ParamKind int

const (
	ParamFloat ParamKind = iota
	ParamInt
	ParamTag
	// ParamInputRef names an input provider; resolved lazily against the
	// evaluating context.
	ParamInputRef
	// ParamAutoRef names a provider under the "input" or "param" parent tags;
	// which kind is consulted depends on the parent (see Brain.resolveParameter).
	ParamAutoRef
)

// Param is a tagged union. Only the field matching Kind is meaningful.
type Param struct {
	Kind       ParamKind
	FloatValue float64
	IntValue   int
	TagValue   Tag
	Ref        Tag
}

func FloatParam(v float64) Param {
	return Param{Kind: ParamFloat, FloatValue: v}
}

func IntParam(v int) Param {
	return Param{Kind: ParamInt, IntValue: v}
}

func TagParam(t Tag) Param {
	return Param{Kind: ParamTag, TagValue: t}
}

func InputRefParam(t Tag) Param {
	return Param{Kind: ParamInputRef, Ref: t}
}

func AutoRefParam(t Tag) Param {
	return Param{Kind: ParamAutoRef, Ref: t}
}

// Float widens the literal kinds to a float64. Reference kinds must be
// resolved first; they read as zero.
func (p Param) Float() float64 {
	switch p.Kind {
	case ParamFloat:
		return p.FloatValue
	case ParamInt:
		return float64(p.IntValue)
	default:
		return 0
	}
}

func (p Param) Equal(o Param) bool {
	if p.Kind != o.Kind {
		return false
	}
	switch p.Kind {
	case ParamFloat:
		return p.FloatValue == o.FloatValue
	case ParamInt:
		return p.IntValue == o.IntValue
	case ParamTag:
		return p.TagValue == o.TagValue
	default:
		return p.Ref == o.Ref
	}
}

func (p Param) String() string {
	switch p.Kind {
	case ParamFloat:
		return fmt.Sprintf("%.3f", p.FloatValue)
	case ParamInt:
		return fmt.Sprintf("%d", p.IntValue)
	case ParamTag:
		return p.TagValue.String()
	case ParamInputRef:
		return "input-ref:" + p.Ref.String()
	case ParamAutoRef:
		return "auto:" + p.Ref.String()
	default:
		return "?"
	}
}

// ParamMap holds named parameters for queries, considerations and actions.
type ParamMap map[string]Param
