/*
   Peephole optimizer.

   Copyright (c) 2025, Hugo Pinto

   Permission is hereby granted, free of charge, to any person obtaining a
   copy of this software and associated documentation files (the "Software"),
   to deal in the Software without restriction, including without limitation
   the rights to use, copy, modify, merge, publish, distribute, sublicense,
   and/or sell copies of the Software, and to permit persons to whom the
   Software is furnished to do so, subject to the following conditions:

   The above copyright notice and this permission notice shall be included in
   all copies or substantial portions of the Software.

   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.  IN NO EVENT SHALL
   HUGO PINTO BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
   IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
   CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

*/

package assembler

import op "github.com/hugojpinto/psion-org2-sdk/emu/opcodemap"

// The optimizer is conservative: it never crosses labels, runs after
// macro expansion, and leaves any pattern alone when flag behavior
// could differ. CMP #0 to TST is the one flag-adjacent rewrite: on the
// CPU core both set N and Z from the register and clear V and C; the
// rewrite is still skipped when a carry consumer follows in the same
// basic block.

// OptStats counts the transformations applied.
type OptStats struct {
	CompareZero    int
	RedundantLoad  int
	PushPullPairs  int
	RedundantTSX   int
	DeadCode       int
}

// Total sums all transformation counts.
func (stats OptStats) Total() int {
	return stats.CompareZero + stats.RedundantLoad + stats.PushPullPairs +
		stats.RedundantTSX + stats.DeadCode
}

type optimizer struct {
	stats OptStats
}

// carry consumers that make the CMP-to-TST rewrite unsafe.
var carryConsumers = map[string]bool{
	"BCC": true, "BCS": true, "BHI": true, "BLS": true,
	"ADCA": true, "ADCB": true, "SBCA": true, "SBCB": true,
	"ROLA": true, "ROLB": true, "RORA": true, "RORB": true,
	"ROL": true, "ROR": true, "DAA": true,
}

var pushPull = map[string]string{
	"PSHA": "PULA",
	"PSHB": "PULB",
	"PSHX": "PULX",
}

// immediate loads considered for duplicate elimination.
var immediateLoads = map[string]bool{
	"LDAA": true, "LDAB": true, "LDD": true, "LDX": true, "LDS": true,
}

// optimize runs all passes to fixpoint.
func (opt *optimizer) optimize(stmts []Statement) []Statement {
	for {
		before := opt.stats.Total()
		stmts = opt.compareZero(stmts)
		stmts = opt.redundantLoads(stmts)
		stmts = opt.pushPullPairs(stmts)
		stmts = opt.redundantTSX(stmts)
		stmts = opt.deadCode(stmts)
		if opt.stats.Total() == before {
			return stmts
		}
	}
}

// literalZero reports an operand that is the literal number zero.
func literalZero(stmt Statement) bool {
	return len(stmt.Exprs) == 1 && stmt.Exprs[0] != nil &&
		stmt.Exprs[0].Kind == exNumber && stmt.Exprs[0].Value == 0
}

// carryConsumerFollows scans forward inside the basic block.
func carryConsumerFollows(stmts []Statement, from int) bool {
	for i := from; i < len(stmts); i++ {
		stmt := stmts[i]
		if stmt.Kind == stLabel {
			return false
		}
		if stmt.Kind != stInstr {
			continue
		}
		if carryConsumers[stmt.Name] {
			return true
		}
		if op.Unconditional[stmt.Name] {
			return false
		}
	}
	return false
}

// compareZero rewrites CMPA #0 and CMPB #0 as TSTA/TSTB.
func (opt *optimizer) compareZero(stmts []Statement) []Statement {
	for i := range stmts {
		stmt := &stmts[i]
		if stmt.Kind != stInstr || stmt.Mode != amImmediate || !literalZero(*stmt) {
			continue
		}
		var repl string
		switch stmt.Name {
		case "CMPA":
			repl = "TSTA"
		case "CMPB":
			repl = "TSTB"
		default:
			continue
		}
		if carryConsumerFollows(stmts, i+1) {
			continue
		}
		stmt.Name = repl
		stmt.Mode = amInherent
		stmt.Exprs = nil
		opt.stats.CompareZero++
	}
	return stmts
}

// redundantLoads drops the second of two identical immediate loads to
// the same register.
func (opt *optimizer) redundantLoads(stmts []Statement) []Statement {
	out := stmts[:0]
	var prev *Statement
	for i := range stmts {
		stmt := stmts[i]
		if stmt.Kind == stLabel {
			prev = nil
			out = append(out, stmt)
			continue
		}
		if stmt.Kind != stInstr {
			out = append(out, stmt)
			continue
		}
		if prev != nil && stmt.Mode == amImmediate && immediateLoads[stmt.Name] &&
			prev.Name == stmt.Name && prev.Mode == amImmediate &&
			exprEqual(prev.Exprs[0], stmt.Exprs[0]) {
			opt.stats.RedundantLoad++
			continue
		}
		out = append(out, stmt)
		if stmt.Mode == amImmediate && immediateLoads[stmt.Name] {
			prev = &out[len(out)-1]
		} else {
			prev = nil
		}
	}
	return out
}

// pushPullPairs deletes adjacent PSH/PUL pairs on the same register.
func (opt *optimizer) pushPullPairs(stmts []Statement) []Statement {
	out := stmts[:0]
	for i := 0; i < len(stmts); i++ {
		stmt := stmts[i]
		if stmt.Kind == stInstr {
			if pull, ok := pushPull[stmt.Name]; ok && i+1 < len(stmts) {
				next := stmts[i+1]
				if next.Kind == stInstr && next.Name == pull {
					opt.stats.PushPullPairs++
					i++
					continue
				}
			}
		}
		out = append(out, stmt)
	}
	return out
}

// redundantTSX keeps only the last of consecutive TSX instructions.
func (opt *optimizer) redundantTSX(stmts []Statement) []Statement {
	out := stmts[:0]
	for i := 0; i < len(stmts); i++ {
		stmt := stmts[i]
		if stmt.Kind == stInstr && stmt.Name == "TSX" &&
			i+1 < len(stmts) && stmts[i+1].Kind == stInstr && stmts[i+1].Name == "TSX" {
			opt.stats.RedundantTSX++
			continue
		}
		out = append(out, stmt)
	}
	return out
}

// deadCode removes instructions between an unconditional transfer and
// the next label. Directives stay: they may define data or symbols.
func (opt *optimizer) deadCode(stmts []Statement) []Statement {
	out := stmts[:0]
	dead := false
	for _, stmt := range stmts {
		switch stmt.Kind {
		case stLabel:
			dead = false
		case stInstr:
			if dead {
				opt.stats.DeadCode++
				continue
			}
			if op.Unconditional[stmt.Name] {
				out = append(out, stmt)
				dead = true
				continue
			}
		case stDirective:
			// ORG starts a new reachable region.
			if stmt.Name == "ORG" {
				dead = false
			}
		}
		out = append(out, stmt)
	}
	return out
}

// exprEqual compares operand trees structurally.
func exprEqual(a, b *Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Value != b.Value || a.Name != b.Name {
		return false
	}
	return exprEqual(a.Left, b.Left) && exprEqual(a.Right, b.Right)
}
