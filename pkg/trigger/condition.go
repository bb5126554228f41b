package trigger

/*
========================
Condition (static)
========================
*/

// Operator compares a captured local with a literal.
type Operator int

const (
	Eq Operator = iota
	Ne
	Gt
	Ge
	Lt
	Le
)

func (o Operator) String() string {
	switch o {
	case Eq:
		return "=="
	case Ne:
		return "!="
	case Gt:
		return ">"
	case Ge:
		return ">="
	case Lt:
		return "<"
	case Le:
		return "<="
	}
	return "?"
}

// Predicate is an arbitrary test over the event.
type Predicate func(*Event) bool

// ConditionSpec is a fluent description of a condition over the locals captured at a site, e.g.
//
//	NewCondition().Local("x", Gt, 5).And().Not().Has("done")
//
// AND binds tighter than OR, Group/Ungroup act as brackets. Compile turns it into a Condition.
type ConditionSpec struct {
	tokens []specToken
}

func NewCondition() *ConditionSpec {
	return &ConditionSpec{}
}

/*
========================
Fluent DSL
========================
*/

func (c *ConditionSpec) And() *ConditionSpec {
	c.tokens = append(c.tokens, specToken{kind: tkOp, op: opAnd})
	return c
}

func (c *ConditionSpec) Or() *ConditionSpec {
	c.tokens = append(c.tokens, specToken{kind: tkOp, op: opOr})
	return c
}

// Not negates the term or group that follows.
func (c *ConditionSpec) Not() *ConditionSpec {
	c.tokens = append(c.tokens, specToken{kind: tkNot})
	return c
}

func (c *ConditionSpec) Group() *ConditionSpec {
	c.tokens = append(c.tokens, specToken{kind: tkLParen})
	return c
}

func (c *ConditionSpec) Ungroup() *ConditionSpec {
	c.tokens = append(c.tokens, specToken{kind: tkRParen})
	return c
}

// Local compares the captured local name with value. A missing local never matches.
func (c *ConditionSpec) Local(name string, op Operator, value any) *ConditionSpec {
	return c.addTerm(specTerm{kind: termLocal, name: name, op: op, value: value})
}

// Has holds when name was captured at the site.
func (c *ConditionSpec) Has(name string) *ConditionSpec {
	return c.addTerm(specTerm{kind: termHas, name: name})
}

func (c *ConditionSpec) InFunction(function string) *ConditionSpec {
	return c.addTerm(specTerm{kind: termFunction, name: function})
}

func (c *ConditionSpec) Matches(predicate Predicate) *ConditionSpec {
	return c.addTerm(specTerm{kind: termPredicate, predicate: predicate})
}

/*
========================
Internal token model
(shared with compiler)
========================
*/

func (c *ConditionSpec) addTerm(term specTerm) *ConditionSpec {
	c.tokens = append(c.tokens, specToken{kind: tkTerm, term: term})
	return c
}

type tokenKind int
type opKind int
type termKind int

const (
	tkTerm tokenKind = iota
	tkOp
	tkNot
	tkLParen
	tkRParen
)

const (
	opAnd opKind = iota
	opOr
)

const (
	termLocal termKind = iota
	termHas
	termFunction
	termPredicate
)

type specToken struct {
	kind tokenKind
	op   opKind
	term specTerm
}

type specTerm struct {
	kind      termKind
	name      string
	op        Operator
	value     any
	predicate Predicate
}
