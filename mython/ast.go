package mython

type Node interface {
	Pos() Position
}

type Statement interface {
	Node
	stmtNode()
}

type Expression interface {
	Node
	exprNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) Pos() Position {
	if len(p.Statements) == 0 {
		return Position{}
	}
	return p.Statements[0].Pos()
}

// AssignStmt binds the value of an expression to a name in the current
// frame.
type AssignStmt struct {
	Name     string
	Value    Expression
	position Position
}

func (s *AssignStmt) stmtNode()     {}
func (s *AssignStmt) Pos() Position { return s.position }

// FieldAssignStmt assigns into a field of the instance that Object
// resolves to.
type FieldAssignStmt struct {
	Object   *VariableExpr
	Field    string
	Value    Expression
	position Position
}

func (s *FieldAssignStmt) stmtNode()     {}
func (s *FieldAssignStmt) Pos() Position { return s.position }

type PrintStmt struct {
	Args     []Expression
	position Position
}

func (s *PrintStmt) stmtNode()     {}
func (s *PrintStmt) Pos() Position { return s.position }

type ReturnStmt struct {
	Value    Expression // nil for a bare return
	position Position
}

func (s *ReturnStmt) stmtNode()     {}
func (s *ReturnStmt) Pos() Position { return s.position }

type IfStmt struct {
	Condition  Expression
	Consequent []Statement
	Alternate  []Statement
	position   Position
}

func (s *IfStmt) stmtNode()     {}
func (s *IfStmt) Pos() Position { return s.position }

// ClassDefStmt binds an already-built class value under its name. The
// class itself, including its method bodies, is assembled at parse time.
type ClassDefStmt struct {
	Class    *Class
	position Position
}

func (s *ClassDefStmt) stmtNode()     {}
func (s *ClassDefStmt) Pos() Position { return s.position }

type ExprStmt struct {
	Expr     Expression
	position Position
}

func (s *ExprStmt) stmtNode()     {}
func (s *ExprStmt) Pos() Position { return s.position }

// VariableExpr is a dotted lookup path: the head resolves in the current
// frame, each further segment indexes the field map of a class instance.
type VariableExpr struct {
	Path     []string
	position Position
}

func (e *VariableExpr) exprNode()     {}
func (e *VariableExpr) Pos() Position { return e.position }

type NumberLiteral struct {
	Value    int64
	position Position
}

func (e *NumberLiteral) exprNode()     {}
func (e *NumberLiteral) Pos() Position { return e.position }

type StringLiteral struct {
	Value    string
	position Position
}

func (e *StringLiteral) exprNode()     {}
func (e *StringLiteral) Pos() Position { return e.position }

type BoolLiteral struct {
	Value    bool
	position Position
}

func (e *BoolLiteral) exprNode()     {}
func (e *BoolLiteral) Pos() Position { return e.position }

type NoneLiteral struct {
	position Position
}

func (e *NoneLiteral) exprNode()     {}
func (e *NoneLiteral) Pos() Position { return e.position }

// UnaryExpr covers the single prefix operator, not.
type UnaryExpr struct {
	Op       TokenType
	Operand  Expression
	position Position
}

func (e *UnaryExpr) exprNode()     {}
func (e *UnaryExpr) Pos() Position { return e.position }

type BinaryExpr struct {
	Op       TokenType
	Lhs      Expression
	Rhs      Expression
	position Position
}

func (e *BinaryExpr) exprNode()     {}
func (e *BinaryExpr) Pos() Position { return e.position }

type MethodCallExpr struct {
	Receiver Expression
	Method   string
	Args     []Expression
	position Position
}

func (e *MethodCallExpr) exprNode()     {}
func (e *MethodCallExpr) Pos() Position { return e.position }

// NewInstanceExpr constructs an instance of a class resolved at parse
// time against the classes declared so far.
type NewInstanceExpr struct {
	Class    *Class
	Args     []Expression
	position Position
}

func (e *NewInstanceExpr) exprNode()     {}
func (e *NewInstanceExpr) Pos() Position { return e.position }

// StringifyExpr is the str(...) built-in: the textual form of its
// argument as a fresh string value.
type StringifyExpr struct {
	Arg      Expression
	position Position
}

func (e *StringifyExpr) exprNode()     {}
func (e *StringifyExpr) Pos() Position { return e.position }
