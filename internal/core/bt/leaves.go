package bt

// ActionFunc adapts a function to a leaf behavior.
type ActionFunc[C any] func(c C) Status

func (f ActionFunc[C]) Update(c C, _ Children[C]) Status { return f(c) }

// ConditionFunc adapts a predicate to a leaf: Success when it holds.
type ConditionFunc[C any] func(c C) bool

func (f ConditionFunc[C]) Update(c C, _ Children[C]) Status { return FromBool(f(c)) }

// Unimplemented always reports Error. It stands in for behavior that has not
// been written yet and is what a nil behavior is replaced with.
type Unimplemented[C any] struct{}

func (Unimplemented[C]) Type() string { return "unimplemented" }

func (Unimplemented[C]) Update(C, Children[C]) Status { return StatusError }
