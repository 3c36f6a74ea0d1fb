/*
 * org2 - Organiser II model registry.
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

package core

import (
	"fmt"
	"sort"

	"github.com/hugojpinto/psion-org2-sdk/emu/keyboard"
)

// Model describes one hardware variant. The id byte matches what the
// ROM reports at $FFE8.
type Model struct {
	Name   string
	RAMKB  int
	Lines  int
	Cols   int
	Layout keyboard.Layout
	ID     uint8
}

var models = map[string]Model{
	"CM":   {Name: "CM", RAMKB: 8, Lines: 2, Cols: 16, Layout: keyboard.LayoutNormal, ID: 0},
	"XP":   {Name: "XP", RAMKB: 32, Lines: 2, Cols: 16, Layout: keyboard.LayoutNormal, ID: 1},
	"LA":   {Name: "LA", RAMKB: 32, Lines: 2, Cols: 16, Layout: keyboard.LayoutNormal, ID: 2},
	"LZ":   {Name: "LZ", RAMKB: 32, Lines: 4, Cols: 20, Layout: keyboard.LayoutNormal, ID: 6},
	"LZ64": {Name: "LZ64", RAMKB: 64, Lines: 4, Cols: 20, Layout: keyboard.LayoutNormal, ID: 5},
	"P200": {Name: "P200", RAMKB: 32, Lines: 2, Cols: 16, Layout: keyboard.LayoutPOS200, ID: 1},
}

// GetModel resolves a model name.
func GetModel(name string) (Model, error) {
	model, ok := models[name]
	if !ok {
		return Model{}, fmt.Errorf("unknown model %q (have %v)", name, ModelNames())
	}
	return model, nil
}

// ModelNames lists the known model names in order.
func ModelNames() []string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
