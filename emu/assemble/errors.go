/*
   Assembler error reporting.

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

import (
	"fmt"
	"strings"
)

// Loc is a source position.
type Loc struct {
	File string
	Line int
	Col  int
}

func (loc Loc) String() string {
	return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
}

// Error is one assembly diagnostic carrying its source position and
// the offending line.
type Error struct {
	Loc        Loc
	Msg        string
	SourceLine string
}

func (err *Error) Error() string {
	var str strings.Builder
	fmt.Fprintf(&str, "%s: error: %s", err.Loc, err.Msg)
	if err.SourceLine != "" {
		str.WriteByte('\n')
		str.WriteString(err.SourceLine)
		str.WriteByte('\n')
		for i := 1; i < err.Loc.Col; i++ {
			if i-1 < len(err.SourceLine) && err.SourceLine[i-1] == '\t' {
				str.WriteByte('\t')
			} else {
				str.WriteByte(' ')
			}
		}
		str.WriteByte('^')
	}
	return str.String()
}

// ErrorList batches diagnostics; assembly reports them together.
type ErrorList []*Error

func (list ErrorList) Error() string {
	msgs := make([]string, len(list))
	for i, err := range list {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// undefinedError marks a symbol lookup that may succeed on the second
// pass.
type undefinedError struct {
	name string
}

func (err *undefinedError) Error() string {
	return "undefined symbol " + err.name
}
