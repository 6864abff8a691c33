package hdlir

// WalkReadsWrites traverses a statement list in read/write mode, calling
// onRead for every signal name read and onWrite for every signal name
// written, in the order the checker needs to detect a combinational
// cycle: RHS (and conditions) are always visited in read mode before the
// corresponding LHS is visited in write mode, mirroring the upstream
// VerilogLogicLoopDetector in check_logic_loops.rs.
func WalkReadsWrites(body []Stmt, onRead, onWrite func(name string)) {
	for _, s := range body {
		walkStmt(s, onRead, onWrite)
	}
}

func walkStmt(s Stmt, onRead, onWrite func(name string)) {
	switch st := s.(type) {
	case Assign:
		walkExpr(st.RHS, onRead)
		onWrite(st.LHS.Name)
	case SliceAssign:
		walkExpr(st.RHS, onRead)
		onWrite(st.Base.Name)
	case If:
		walkExpr(st.Cond, onRead)
		for _, s2 := range st.Then {
			walkStmt(s2, onRead, onWrite)
		}
		for _, s2 := range st.Else {
			walkStmt(s2, onRead, onWrite)
		}
	case Match:
		walkExpr(st.Sel, onRead)
		for _, c := range st.Cases {
			for _, s2 := range c.Body {
				walkStmt(s2, onRead, onWrite)
			}
		}
		for _, s2 := range st.Default {
			walkStmt(s2, onRead, onWrite)
		}
	}
}

func walkExpr(e Expr, onRead func(name string)) {
	switch v := e.(type) {
	case Lit:
		// literals reference nothing
	case Ref:
		onRead(v.Name)
	case BinOp:
		walkExpr(v.L, onRead)
		walkExpr(v.R, onRead)
	case Slice:
		walkExpr(v.Base, onRead)
	}
}
