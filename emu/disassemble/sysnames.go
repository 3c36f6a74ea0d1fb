/*
   Known system addresses and services for disassembly annotation.

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

package disassembler

// SysVars names the operating system variables a disassembly is most
// likely to touch: the zero-page scratch words the service convention
// uses, the interpreter's registers, and the semi-custom latches.
var SysVars = map[uint16]string{
	0x0041: "UTW_S0",
	0x0043: "UTW_S1",
	0x0045: "UTW_S2",
	0x0047: "UTW_S3",
	0x0049: "UTW_S4",
	0x004B: "UTW_S5",
	0x00A5: "RTA_SP",
	0x00A9: "RTA_PC",
	0x01C0: "switch off",
	0x0200: "21V on",
	0x0240: "21V off",
	0x0280: "buzzer on",
	0x02C0: "buzzer off",
	0x0300: "key counter reset",
	0x0340: "key counter step",
	0x0360: "bank reset",
	0x0380: "NMI to CPU",
	0x03A0: "next RAM bank",
	0x03C0: "NMI to counter",
	0x03E0: "next ROM bank",
}

// Syscalls names a few well known services for SWI annotation. The
// service number travels in A.
var Syscalls = map[uint8]string{
	0x00: "BT$NMDN",
	0x01: "BT$PNON",
	0x02: "BT$PNOF",
	0x03: "BT$SWOF",
	0x04: "BZ$ALRM",
	0x05: "BZ$BELL",
	0x06: "BZ$TONE",
}
