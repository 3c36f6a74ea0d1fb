/*
 * org2 - OPK pack image parser.
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

import "strings"

// Image is a decoded pack image.
type Image struct {
	Header  Header
	Records []Record
}

// Parse decodes a pack image. Both data length conventions are
// accepted: with or without the FF FF terminator counted.
func Parse(data []uint8) (*Image, error) {
	if len(data) < 6 {
		return nil, &FormatError{Offset: 0, Msg: "truncated envelope"}
	}
	if data[0] != 'O' || data[1] != 'P' || data[2] != 'K' {
		return nil, &FormatError{Offset: 0, Msg: "bad magic"}
	}
	length := int(data[3])<<16 | int(data[4])<<8 | int(data[5])
	if length+6 != len(data) && length+8 != len(data) {
		return nil, &FormatError{Offset: 3, Msg: "data length does not match file size"}
	}
	if len(data) < 16 {
		return nil, &FormatError{Offset: 6, Msg: "truncated pack header"}
	}

	img := &Image{Header: decodeHeader(data[6:16])}

	pos := 16
	for pos < len(data) {
		if data[pos] == 0xFF {
			if pos+1 < len(data) && data[pos+1] == 0xFF {
				break
			}
			return nil, &FormatError{Offset: pos, Msg: "lone FF byte"}
		}
		if data[pos] == 0x02 && pos+1 < len(data) && data[pos+1] == TypeLongMarker {
			if pos+4 > len(data) {
				return nil, &FormatError{Offset: pos, Msg: "truncated long record header"}
			}
			size := int(data[pos+2])<<8 | int(data[pos+3])
			if pos+4+size > len(data) {
				return nil, &FormatError{Offset: pos, Msg: "long record payload past end of data"}
			}
			payload := make([]uint8, size)
			copy(payload, data[pos+4:pos+4+size])
			img.Records = append(img.Records, Record{Type: TypeLongMarker, Payload: payload})
			pos += 4 + size
			continue
		}
		size := int(data[pos])
		if pos+1+size > len(data) {
			return nil, &FormatError{Offset: pos, Msg: "record length past end of data"}
		}
		if size == 0 {
			return nil, &FormatError{Offset: pos, Msg: "zero length record"}
		}
		payload := make([]uint8, size-1)
		copy(payload, data[pos+2:pos+1+size])
		img.Records = append(img.Records, Record{Type: data[pos+1], Payload: payload})
		pos += 1 + size
	}

	return img, nil
}

// AnalyzeHeader runs the checksum analysis over the raw header bytes
// of an image.
func AnalyzeHeader(data []uint8) (Analysis, error) {
	if len(data) < 16 {
		return Analysis{}, &FormatError{Offset: 0, Msg: "truncated pack header"}
	}
	return AnalyzeChecksum(data[6:16]), nil
}

// Procedures lists the procedure names stored in the image, in order.
func (img *Image) Procedures() []string {
	var names []string
	for _, rec := range img.Records {
		if rec.Type == TypeProcedure {
			names = append(names, strings.TrimRight(string(rec.Payload), " "))
		}
	}
	return names
}

// Procedure returns the object body of a named procedure, which is
// the long record that follows its name record.
func (img *Image) Procedure(name string) ([]uint8, bool) {
	for i, rec := range img.Records {
		if rec.Type != TypeProcedure {
			continue
		}
		if strings.TrimRight(string(rec.Payload), " ") != name {
			continue
		}
		if i+1 < len(img.Records) && img.Records[i+1].Type == TypeLongMarker {
			return img.Records[i+1].Payload, true
		}
		return nil, false
	}
	return nil, false
}
