package program

import "github.com/cbegin/kirosynth-go/internal/signal"

// ExprCode is one operation of a compiled expression.
type ExprCode uint8

const (
	OpSignal ExprCode = iota // push the value of Ref
	OpConst                  // push Value
	OpAdd
	OpSub
	OpMul
)

type ExprOp struct {
	Code  ExprCode
	Ref   signal.Ref
	Value float64
}

// Expr is the arithmetic combinator block: a postfix program evaluated on a
// fixed-depth stack once per sample.
type Expr struct {
	Code   []ExprOp
	Depth  int
	Output signal.Ref
}

func (Expr) Kind() string { return "expr" }

func (b Expr) Reads() []signal.Ref {
	var refs []signal.Ref
	for _, op := range b.Code {
		if op.Code == OpSignal {
			refs = append(refs, op.Ref)
		}
	}
	return refs
}

func (b Expr) Writes() []signal.Ref { return []signal.Ref{b.Output} }

// Eval runs the program against a bus using stack as scratch space. The
// stack must hold at least Depth values.
func (b *Expr) Eval(bus *signal.Bus, stack []float64) float64 {
	sp := 0
	for _, op := range b.Code {
		switch op.Code {
		case OpSignal:
			stack[sp] = bus.Get(op.Ref)
			sp++
		case OpConst:
			stack[sp] = op.Value
			sp++
		case OpAdd:
			sp--
			stack[sp-1] += stack[sp]
		case OpSub:
			sp--
			stack[sp-1] -= stack[sp]
		case OpMul:
			sp--
			stack[sp-1] *= stack[sp]
		}
	}
	if sp == 0 {
		return 0
	}
	return stack[sp-1]
}

// ExprNode is a subexpression under construction.
type ExprNode struct {
	code  []ExprOp
	depth int
}

// ExprBuilder composes expression nodes for Builder.Expr.
type ExprBuilder struct{}

func (ExprBuilder) Signal(ref signal.Ref) ExprNode {
	return ExprNode{code: []ExprOp{{Code: OpSignal, Ref: ref}}, depth: 1}
}

// Param reads the param's modulated value, so its ParamStage must come first.
func (e ExprBuilder) Param(pb ParamBlock) ExprNode { return e.Signal(pb.Out) }

func (ExprBuilder) Const(v float64) ExprNode {
	return ExprNode{code: []ExprOp{{Code: OpConst, Value: v}}, depth: 1}
}

func (ExprBuilder) Add(a, b ExprNode) ExprNode { return binary(OpAdd, a, b) }

func (ExprBuilder) Sub(a, b ExprNode) ExprNode { return binary(OpSub, a, b) }

func (ExprBuilder) Mul(a, b ExprNode) ExprNode { return binary(OpMul, a, b) }

func (e ExprBuilder) AddSignals(a, b signal.Ref) ExprNode {
	return e.Add(e.Signal(a), e.Signal(b))
}

func (e ExprBuilder) MulSignals(a, b signal.Ref) ExprNode {
	return e.Mul(e.Signal(a), e.Signal(b))
}

func (e ExprBuilder) MulSignalParam(s signal.Ref, pb ParamBlock) ExprNode {
	return e.Mul(e.Signal(s), e.Param(pb))
}

func binary(code ExprCode, a, b ExprNode) ExprNode {
	out := make([]ExprOp, 0, len(a.code)+len(b.code)+1)
	out = append(out, a.code...)
	out = append(out, b.code...)
	out = append(out, ExprOp{Code: code})
	return ExprNode{code: out, depth: max(a.depth, b.depth+1)}
}
