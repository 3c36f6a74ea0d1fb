/*
 * org2 - Configuration file parser.
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

package configparser

/* Configuration file format:
 *
 * '#' indicates comment, rest of line is ignored.
 * <line> := 'model' <name> |
 *           'rom' <path> |
 *           'pack' <slot> <path> |
 *           'logfile' <path>
 * <slot> ::= 0 | 1 | 2
 */

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the parsed machine description.
type Config struct {
	Model   string
	ROMPath string
	LogPath string
	Packs   map[int]string // slot number to OPK path
}

// LoadConfigFile reads and parses a configuration file.
func LoadConfigFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := &Config{Model: "XP", Packs: make(map[int]string)}
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if err := config.applyLine(fields); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return config, nil
}

func (config *Config) applyLine(fields []string) error {
	keyword := strings.ToLower(fields[0])
	switch keyword {
	case "model":
		if len(fields) != 2 {
			return fmt.Errorf("model needs a name")
		}
		config.Model = strings.ToUpper(fields[1])
	case "rom":
		if len(fields) != 2 {
			return fmt.Errorf("rom needs a path")
		}
		config.ROMPath = fields[1]
	case "logfile":
		if len(fields) != 2 {
			return fmt.Errorf("logfile needs a path")
		}
		config.LogPath = fields[1]
	case "pack":
		if len(fields) != 3 {
			return fmt.Errorf("pack needs a slot and a path")
		}
		slot, err := strconv.Atoi(fields[1])
		if err != nil || slot < 0 || slot > 2 {
			return fmt.Errorf("pack slot must be 0 to 2")
		}
		config.Packs[slot] = fields[2]
	default:
		return fmt.Errorf("unknown keyword %q", fields[0])
	}
	return nil
}
