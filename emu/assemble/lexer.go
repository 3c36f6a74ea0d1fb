/*
   Assembly language lexer.

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

// Token kinds. Numbers come in decimal, hex ($7F or 0x7F), binary
// (%1010 or 0b1010), octal (@177 or 0o177) and character ('A') forms.
// Comments start with ; anywhere or * in column one.
const (
	tEOF = iota
	tNewline
	tIdent
	tNumber
	tString
	tComma
	tColon
	tHash
	tLParen
	tRParen
	tOp     // arithmetic, bitwise, shift and comparison operators
	tDollar // bare $: the current address
)

// Token is one lexeme with its position.
type Token struct {
	Type  int
	Text  string
	Value int
	Loc   Loc
}

type lexer struct {
	src  string
	file string
	pos  int
	line int
	col  int
}

func newLexer(src, file string) *lexer {
	return &lexer{src: src, file: file, line: 1, col: 1}
}

func (lex *lexer) loc() Loc {
	return Loc{File: lex.file, Line: lex.line, Col: lex.col}
}

func (lex *lexer) peek() byte {
	if lex.pos >= len(lex.src) {
		return 0
	}
	return lex.src[lex.pos]
}

func (lex *lexer) peekAt(n int) byte {
	if lex.pos+n >= len(lex.src) {
		return 0
	}
	return lex.src[lex.pos+n]
}

func (lex *lexer) advance() byte {
	ch := lex.src[lex.pos]
	lex.pos++
	if ch == '\n' {
		lex.line++
		lex.col = 1
	} else {
		lex.col++
	}
	return ch
}

func isDigit(ch byte) bool  { return ch >= '0' && ch <= '9' }
func isHex(ch byte) bool    { return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') }
func isIdent(ch byte) bool  { return isDigit(ch) || isLetter(ch) || ch == '_' || ch == '.' || ch == '$' }
func isLetter(ch byte) bool { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }

// tokenize converts the whole source into a token stream, newlines
// included.
func (lex *lexer) tokenize() ([]Token, *Error) {
	var tokens []Token
	for lex.pos < len(lex.src) {
		ch := lex.peek()
		loc := lex.loc()

		switch {
		case ch == '\n':
			lex.advance()
			tokens = append(tokens, Token{Type: tNewline, Loc: loc})
			continue
		case ch == ' ' || ch == '\t' || ch == '\r':
			lex.advance()
			continue
		case ch == ';', ch == '*' && lex.col == 1:
			for lex.pos < len(lex.src) && lex.peek() != '\n' {
				lex.advance()
			}
			continue
		}

		switch {
		case isLetter(ch) || ch == '_' || ch == '.':
			start := lex.pos
			for lex.pos < len(lex.src) && isIdent(lex.peek()) {
				lex.advance()
			}
			tokens = append(tokens, Token{Type: tIdent, Text: lex.src[start:lex.pos], Loc: loc})

		case isDigit(ch):
			tok, err := lex.number(loc)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)

		case ch == '$':
			lex.advance()
			if isHex(lex.peek()) {
				value := 0
				for lex.pos < len(lex.src) && isHex(lex.peek()) {
					value = value*16 + hexVal(lex.advance())
				}
				tokens = append(tokens, Token{Type: tNumber, Value: value, Loc: loc})
			} else {
				tokens = append(tokens, Token{Type: tDollar, Loc: loc})
			}

		case ch == '%':
			if lex.peekAt(1) == '0' || lex.peekAt(1) == '1' {
				lex.advance()
				value := 0
				for lex.peek() == '0' || lex.peek() == '1' {
					value = value*2 + int(lex.advance()-'0')
				}
				tokens = append(tokens, Token{Type: tNumber, Value: value, Loc: loc})
			} else {
				lex.advance()
				tokens = append(tokens, Token{Type: tOp, Text: "%", Loc: loc})
			}

		case ch == '@':
			lex.advance()
			if lex.peek() < '0' || lex.peek() > '7' {
				return nil, &Error{Loc: loc, Msg: "malformed octal number"}
			}
			value := 0
			for lex.peek() >= '0' && lex.peek() <= '7' {
				value = value*8 + int(lex.advance()-'0')
			}
			tokens = append(tokens, Token{Type: tNumber, Value: value, Loc: loc})

		case ch == '\'':
			lex.advance()
			if lex.pos >= len(lex.src) || lex.peek() == '\n' {
				return nil, &Error{Loc: loc, Msg: "unterminated character literal"}
			}
			value := int(lex.advance())
			if lex.peek() == '\'' {
				lex.advance()
			}
			tokens = append(tokens, Token{Type: tNumber, Value: value, Loc: loc})

		case ch == '"':
			lex.advance()
			start := lex.pos
			for lex.pos < len(lex.src) && lex.peek() != '"' && lex.peek() != '\n' {
				lex.advance()
			}
			if lex.peek() != '"' {
				return nil, &Error{Loc: loc, Msg: "unterminated string"}
			}
			text := lex.src[start:lex.pos]
			lex.advance()
			tokens = append(tokens, Token{Type: tString, Text: text, Loc: loc})

		case ch == ',':
			lex.advance()
			tokens = append(tokens, Token{Type: tComma, Loc: loc})
		case ch == ':':
			lex.advance()
			tokens = append(tokens, Token{Type: tColon, Loc: loc})
		case ch == '#':
			lex.advance()
			tokens = append(tokens, Token{Type: tHash, Loc: loc})
		case ch == '(':
			lex.advance()
			tokens = append(tokens, Token{Type: tLParen, Loc: loc})
		case ch == ')':
			lex.advance()
			tokens = append(tokens, Token{Type: tRParen, Loc: loc})

		case ch == '<' || ch == '>':
			lex.advance()
			text := string(ch)
			if lex.peek() == ch {
				lex.advance()
				text += string(ch) // << or >>
			} else if lex.peek() == '=' {
				lex.advance()
				text += "=" // <= or >=
			} else if ch == '<' && lex.peek() == '>' {
				lex.advance()
				text = "!=" // <> means not equal
			}
			tokens = append(tokens, Token{Type: tOp, Text: text, Loc: loc})

		case ch == '=' && lex.peekAt(1) == '=':
			lex.advance()
			lex.advance()
			tokens = append(tokens, Token{Type: tOp, Text: "==", Loc: loc})
		case ch == '!' && lex.peekAt(1) == '=':
			lex.advance()
			lex.advance()
			tokens = append(tokens, Token{Type: tOp, Text: "!=", Loc: loc})

		case ch == '+' || ch == '-' || ch == '*' || ch == '/' ||
			ch == '&' || ch == '|' || ch == '^' || ch == '~':
			lex.advance()
			tokens = append(tokens, Token{Type: tOp, Text: string(ch), Loc: loc})

		case ch == '\\' && isDigit(lex.peekAt(1)):
			// Macro parameter reference; substituted at expansion.
			start := lex.pos
			lex.advance()
			lex.advance()
			tokens = append(tokens, Token{Type: tIdent, Text: lex.src[start:lex.pos], Loc: loc})

		default:
			return nil, &Error{Loc: loc, Msg: "unexpected character " + string(ch)}
		}
	}
	tokens = append(tokens, Token{Type: tNewline, Loc: lex.loc()})
	tokens = append(tokens, Token{Type: tEOF, Loc: lex.loc()})
	return tokens, nil
}

func (lex *lexer) number(loc Loc) (Token, *Error) {
	// 0x, 0b and 0o prefixes.
	if lex.peek() == '0' {
		switch lex.peekAt(1) {
		case 'x', 'X':
			lex.advance()
			lex.advance()
			if !isHex(lex.peek()) {
				return Token{}, &Error{Loc: loc, Msg: "malformed hex number"}
			}
			value := 0
			for lex.pos < len(lex.src) && isHex(lex.peek()) {
				value = value*16 + hexVal(lex.advance())
			}
			return Token{Type: tNumber, Value: value, Loc: loc}, nil
		case 'b', 'B':
			lex.advance()
			lex.advance()
			if lex.peek() != '0' && lex.peek() != '1' {
				return Token{}, &Error{Loc: loc, Msg: "malformed binary number"}
			}
			value := 0
			for lex.peek() == '0' || lex.peek() == '1' {
				value = value*2 + int(lex.advance()-'0')
			}
			return Token{Type: tNumber, Value: value, Loc: loc}, nil
		case 'o', 'O':
			lex.advance()
			lex.advance()
			if lex.peek() < '0' || lex.peek() > '7' {
				return Token{}, &Error{Loc: loc, Msg: "malformed octal number"}
			}
			value := 0
			for lex.peek() >= '0' && lex.peek() <= '7' {
				value = value*8 + int(lex.advance()-'0')
			}
			return Token{Type: tNumber, Value: value, Loc: loc}, nil
		}
	}
	value := 0
	for lex.pos < len(lex.src) && isDigit(lex.peek()) {
		value = value*10 + int(lex.advance()-'0')
	}
	return Token{Type: tNumber, Value: value, Loc: loc}, nil
}

func hexVal(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	default:
		return int(ch-'A') + 10
	}
}
