package expr

// Node is a parsed expression node.
type Node interface {
	Pos() int
}

type (
	// Num is a numeric literal.
	Num struct {
		At    int
		Value float64
	}

	// Str is a string literal. It parses but never passes Check.
	Str struct {
		At    int
		Value string
	}

	// Name is a reference to a binding or a constant.
	Name struct {
		At    int
		Ident string
	}

	// Unary is a prefix + or -.
	Unary struct {
		At int
		Op Kind
		X  Node
	}

	// Binary is an infix arithmetic operation.
	Binary struct {
		At   int
		Op   Kind
		L, R Node
	}

	// Call is a function call.
	Call struct {
		At   int
		Func Node
		Args []Node
	}

	// Attr is attribute access (x.y). It parses but never passes Check.
	Attr struct {
		At   int
		X    Node
		Name string
	}

	// Index is a subscript (x[i]). It parses but never passes Check.
	Index struct {
		At    int
		X     Node
		Index Node
	}
)

func (n *Num) Pos() int    { return n.At }
func (n *Str) Pos() int    { return n.At }
func (n *Name) Pos() int   { return n.At }
func (n *Unary) Pos() int  { return n.At }
func (n *Binary) Pos() int { return n.At }
func (n *Call) Pos() int   { return n.At }
func (n *Attr) Pos() int   { return n.At }
func (n *Index) Pos() int  { return n.At }
