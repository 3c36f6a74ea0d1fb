/*
   HD6303 assembler front end.

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

// Package assembler turns HD6303 assembly source into Psion object
// code. The pipeline is lexer, parser (includes, macros and
// conditionals), optional peephole optimizer, then a two-pass code
// generator with branch relaxation.
package assembler

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/hugojpinto/psion-org2-sdk/opk"
)

// Options configures an Assembler.
type Options struct {
	IncludePaths []string
	Defines      map[string]int
	Relocatable  bool
	TargetModel  string // CM, XP, LA, LZ, LZ64, PORTABLE; empty means XP
	Optimize     bool
}

// Target models. LA is 2-line despite the L prefix; PORTABLE runs on
// anything and never gets the 4-line prefix.
var validModels = map[string]bool{
	"CM": true, "XP": true, "LA": true, "LZ": true, "LZ64": true, "PORTABLE": true,
}

var fourLineModels = map[string]bool{"LZ": true, "LZ64": true}

var modelIDs = map[string]int{
	"CM": 0, "XP": 1, "LA": 2, "LZ64": 5, "LZ": 6, "PORTABLE": 1,
}

var modelRows = map[string]int{
	"CM": 2, "XP": 2, "LA": 2, "LZ": 4, "LZ64": 4, "PORTABLE": 2,
}

// fourLinePrefix switches an LZ into 4-line mode before machine code
// runs: the STOP and SIN qcodes the boot menu recognizes.
var fourLinePrefix = []uint8{0x59, 0xB2}

// Assembler is the main entry point. Besides its configuration it
// keeps the results of the last Assemble call (code, symbols and
// statistics), and a MODEL directive changes its target model for
// later calls too.
type Assembler struct {
	includePaths []string
	defines      map[string]int
	relocatable  bool
	optimize     bool

	model        string
	modelFromAPI bool

	syms    *symtab
	gen     *codegen
	code    []uint8
	stats   OptStats
	symbols map[string]int
}

// New builds an assembler.
func New(opts Options) (*Assembler, error) {
	model := strings.ToUpper(opts.TargetModel)
	if model == "" {
		model = "XP"
	}
	if !validModels[model] {
		return nil, fmt.Errorf("unknown target model %q", opts.TargetModel)
	}
	asm := &Assembler{
		includePaths: append([]string{}, opts.IncludePaths...),
		defines:      make(map[string]int),
		relocatable:  opts.Relocatable,
		optimize:     opts.Optimize,
		model:        model,
		modelFromAPI: opts.TargetModel != "",
	}
	for name, value := range opts.Defines {
		asm.defines[name] = value
	}
	return asm, nil
}

// AddIncludePath appends a directory to the include search list.
func (asm *Assembler) AddIncludePath(path string) {
	asm.includePaths = append(asm.includePaths, path)
}

// DefineSymbol predefines a symbol, like -D on a command line.
func (asm *Assembler) DefineSymbol(name string, value int) {
	asm.defines[name] = value
}

// setModel handles the MODEL directive. An explicit API model wins.
func (asm *Assembler) setModel(model string) error {
	if !validModels[model] {
		return fmt.Errorf("unknown model %s", model)
	}
	if asm.modelFromAPI {
		return nil
	}
	asm.model = model
	return nil
}

// modelSymbols injects the model-derived predefined symbols.
func (asm *Assembler) modelSymbols(tab *symtab) {
	rows := modelRows[asm.model]
	cols := 16
	if rows == 4 {
		cols = 20
	}
	define := func(name string, value int) {
		tab.define(name, value, false, Loc{File: "<predefined>"})
	}
	define("__MODEL__", modelIDs[asm.model])
	define("__PSION_"+asm.model+"__", 1)
	define("DISP_ROWS", rows)
	define("DISP_COLS", cols)
	if rows == 2 {
		define("__PSION_2LINE__", 1)
	} else {
		define("__PSION_4LINE__", 1)
	}
}

// Assemble runs the full pipeline over source text. Errors are
// collected and returned together as an ErrorList.
func (asm *Assembler) Assemble(source, filename string) ([]uint8, error) {
	// The MODEL directive is seen mid-generation, but conditional
	// assembly needs the model symbols up front: scan for an early
	// MODEL directive the cheap way first.
	asm.scanModel(source)

	tab := newSymtab()
	asm.modelSymbols(tab)
	for name, value := range asm.defines {
		tab.define(name, value, false, Loc{File: "<define>"})
	}

	stmts, errs := parseSource(source, filename, asm.includePaths, tab)
	if len(errs) > 0 {
		return nil, errs
	}

	if asm.optimize {
		opt := &optimizer{}
		stmts = opt.optimize(stmts)
		asm.stats = opt.stats
		if asm.stats.Total() > 0 {
			slog.Debug("peephole optimizations applied", "count", asm.stats.Total())
		}
	} else {
		asm.stats = OptStats{}
	}

	asm.syms = tab
	asm.gen = newCodegen(tab, asm.relocatable, asm.setModel)
	code := asm.gen.generate(stmts)
	if len(asm.gen.errs) > 0 {
		return nil, asm.gen.errs
	}

	asm.code = code
	asm.symbols = make(map[string]int)
	for name, value := range tab.values {
		asm.symbols[name] = value
	}
	return code, nil
}

// scanModel finds a MODEL directive before the main parse so the
// model symbols exist for conditional assembly.
func (asm *Assembler) scanModel(source string) {
	for _, line := range strings.Split(source, "\n") {
		fields := strings.Fields(strings.ToUpper(line))
		if len(fields) >= 2 && fields[0] == "MODEL" && validModels[fields[1]] {
			_ = asm.setModel(fields[1])
			return
		}
	}
}

// Code returns the object bytes of the last assembly.
func (asm *Assembler) Code() []uint8 {
	return asm.code
}

// Origin returns the load address of the last assembly.
func (asm *Assembler) Origin() int {
	if asm.gen == nil {
		return 0
	}
	return asm.gen.origin
}

// Symbols returns the final symbol table.
func (asm *Assembler) Symbols() map[string]int {
	return asm.symbols
}

// Listing returns the assembly listing text.
func (asm *Assembler) Listing() string {
	if asm.gen == nil {
		return ""
	}
	return asm.gen.listingText()
}

// Stats returns the optimizer counters from the last run.
func (asm *Assembler) Stats() OptStats {
	return asm.stats
}

// FixupCount reports the relocation entries emitted, zero unless in
// relocatable mode.
func (asm *Assembler) FixupCount() int {
	if asm.gen == nil {
		return 0
	}
	return len(asm.gen.fixups)
}

// TargetModel returns the effective model after MODEL directives.
func (asm *Assembler) TargetModel() string {
	return asm.model
}

// OB3 wraps the last assembly in the OB3 container. Four-line targets
// get the mode-switch prefix.
func (asm *Assembler) OB3() []uint8 {
	code := asm.code
	if fourLineModels[asm.model] {
		code = append(append([]uint8{}, fourLinePrefix...), code...)
	}
	return opk.EncodeOB3(opk.TypeProcedure, code)
}

// WriteOB3 writes the OB3 object file.
func (asm *Assembler) WriteOB3(path string) error {
	return os.WriteFile(path, asm.OB3(), 0o644)
}

// WriteBinary writes the raw code bytes.
func (asm *Assembler) WriteBinary(path string) error {
	return os.WriteFile(path, asm.code, 0o644)
}

// WriteListing writes the listing with a trailing symbol table.
func (asm *Assembler) WriteListing(path string) error {
	var str strings.Builder
	str.WriteString(asm.Listing())
	str.WriteString("\nSymbols:\n")
	str.WriteString(asm.SymbolText())
	return os.WriteFile(path, []byte(str.String()), 0o644)
}

// SymbolText renders "name = $value" lines, sorted.
func (asm *Assembler) SymbolText() string {
	names := make([]string, 0, len(asm.symbols))
	for name := range asm.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	var str strings.Builder
	for _, name := range names {
		fmt.Fprintf(&str, "%s = $%04X\n", name, asm.symbols[name])
	}
	return str.String()
}

// WriteSymbols writes the symbol table file.
func (asm *Assembler) WriteSymbols(path string) error {
	return os.WriteFile(path, []byte(asm.SymbolText()), 0o644)
}
