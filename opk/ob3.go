/*
 * org2 - OB3 object file container.
 *
 * Copyright 2025, Hugo Pinto
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package opk

// OB3 is the object file the assembler emits for one procedure:
//
//	offset size  field
//	0      3     magic "ORG"
//	3      2     data length   (big-endian, bytes from offset 5 on)
//	5      1     file type     ($83 = procedure)
//	6      2     code length   (big-endian)
//	8      n     code bytes
type OB3 struct {
	FileType uint8
	Code     []uint8
}

// EncodeOB3 wraps code bytes in the OB3 container.
func EncodeOB3(fileType uint8, code []uint8) []uint8 {
	dataLen := len(code) + 3
	out := make([]uint8, 0, len(code)+8)
	out = append(out, 'O', 'R', 'G',
		uint8(dataLen>>8), uint8(dataLen),
		fileType,
		uint8(len(code)>>8), uint8(len(code)))
	return append(out, code...)
}

// ParseOB3 decodes an OB3 container.
func ParseOB3(data []uint8) (*OB3, error) {
	if len(data) < 8 {
		return nil, &FormatError{Offset: 0, Msg: "truncated OB3 file"}
	}
	if data[0] != 'O' || data[1] != 'R' || data[2] != 'G' {
		return nil, &FormatError{Offset: 0, Msg: "bad OB3 magic"}
	}
	dataLen := int(data[3])<<8 | int(data[4])
	if dataLen+5 > len(data) {
		return nil, &FormatError{Offset: 3, Msg: "OB3 data length past end of file"}
	}
	codeLen := int(data[6])<<8 | int(data[7])
	if codeLen+8 > len(data) {
		return nil, &FormatError{Offset: 6, Msg: "OB3 code length past end of file"}
	}
	code := make([]uint8, codeLen)
	copy(code, data[8:8+codeLen])
	return &OB3{FileType: data[5], Code: code}, nil
}

// Body returns the bytes stored in a pack record for this file: the
// file type, code length and code, without the outer magic.
func (file *OB3) Body() []uint8 {
	out := make([]uint8, 0, len(file.Code)+3)
	out = append(out, file.FileType,
		uint8(len(file.Code)>>8), uint8(len(file.Code)))
	return append(out, file.Code...)
}
