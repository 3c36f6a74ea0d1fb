/*
 * org2 - OPK pack image builder.
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

// Builder assembles a pack image record by record. The emitted 24 bit
// length follows the BLDPACK convention: it counts the pack data block
// including the FF FF terminator. The parser accepts either
// convention.
type Builder struct {
	header  Header
	records []Record
}

var validSizes = map[int]bool{8: true, 16: true, 32: true, 64: true, 128: true}

// NewBuilder starts a pack of the given size in KB with a flags byte.
func NewBuilder(sizeKB int, flags uint8) (*Builder, error) {
	if !validSizes[sizeKB] {
		return nil, &PackSizeError{SizeKB: sizeKB, Msg: "not a supported pack size"}
	}
	return &Builder{
		header: Header{Flags: flags, SizeKB: sizeKB},
	}, nil
}

// SetStamp fills the header timestamp bytes.
func (bld *Builder) SetStamp(year, month, day, hour uint8) {
	bld.header.Year = year
	bld.header.Month = month
	bld.header.Day = day
	bld.header.Hour = hour
}

// Header returns the current header; the checksum field is only
// meaningful after Build.
func (bld *Builder) Header() Header {
	return bld.header
}

// AddRecord appends a raw record.
func (bld *Builder) AddRecord(rec Record) {
	bld.records = append(bld.records, rec)
}

// AddProcedure appends a procedure: a short name record followed by a
// long record holding the object body. The name rule is enforced
// here.
func (bld *Builder) AddProcedure(name string, body []uint8) error {
	if err := ValidProcName(name); err != nil {
		return err
	}
	padded := make([]uint8, 8)
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded, name)
	bld.AddRecord(Record{Type: TypeProcedure, Payload: padded})
	bld.AddRecord(Record{Type: TypeLongMarker, Payload: body})
	return nil
}

// AddOB3 appends a procedure from an OB3 object file.
func (bld *Builder) AddOB3(name string, ob3Data []uint8) error {
	file, err := ParseOB3(ob3Data)
	if err != nil {
		return err
	}
	return bld.AddProcedure(name, file.Body())
}

// Build serializes the pack image.
func (bld *Builder) Build() ([]uint8, error) {
	hdr := bld.header
	raw := hdr.Encode()
	hdr.Checksum = HeaderChecksum(raw)

	block := hdr.Encode()
	for _, rec := range bld.records {
		block = append(block, rec.Encode()...)
	}
	block = append(block, 0xFF, 0xFF)

	if len(block) > bld.header.SizeKB*1024 {
		return nil, &PackSizeError{
			SizeKB: bld.header.SizeKB,
			Msg:    "records do not fit the pack",
		}
	}

	out := make([]uint8, 0, len(block)+6)
	out = append(out, 'O', 'P', 'K',
		uint8(len(block)>>16), uint8(len(block)>>8), uint8(len(block)))
	return append(out, block...), nil
}
