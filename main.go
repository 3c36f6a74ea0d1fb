/*
 * org2 - Main process.
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

package main

import (
	"log/slog"
	"os"

	getopt "github.com/pborman/getopt/v2"

	monitor "github.com/hugojpinto/psion-org2-sdk/command/monitor"
	config "github.com/hugojpinto/psion-org2-sdk/config/configparser"
	core "github.com/hugojpinto/psion-org2-sdk/emu/core"
	logger "github.com/hugojpinto/psion-org2-sdk/util/logger"
)

func main() {
	optConfig := getopt.StringLong("config", 'c', "", "Configuration file")
	optModel := getopt.StringLong("model", 'm', "", "Machine model (CM, XP, LA, LZ, LZ64)")
	optROM := getopt.StringLong("rom", 'r', "", "ROM image")
	optOPK := getopt.StringLong("opk", 'o', "", "Pack image for slot 0")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optDebug := getopt.BoolLong("debug", 'd', "Echo debug logging")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	machine := &config.Config{Model: "XP", Packs: map[int]string{}}
	if *optConfig != "" {
		loaded, err := config.LoadConfigFile(*optConfig)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
		machine = loaded
	}
	if *optModel != "" {
		machine.Model = *optModel
	}
	if *optROM != "" {
		machine.ROMPath = *optROM
	}
	if *optOPK != "" {
		machine.Packs[0] = *optOPK
	}
	if *optLogFile != "" {
		machine.LogPath = *optLogFile
	}

	var logSink *os.File
	if machine.LogPath != "" {
		var err error
		logSink, err = os.Create(machine.LogPath)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}
	programLevel := new(slog.LevelVar)
	programLevel.Set(slog.LevelDebug)
	slog.SetDefault(slog.New(logger.NewHandler(logSink,
		&slog.HandlerOptions{Level: programLevel}, *optDebug)))

	slog.Info("org2 started", "model", machine.Model)

	var rom []uint8
	if machine.ROMPath != "" {
		data, err := os.ReadFile(machine.ROMPath)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
		rom = data
	}

	emu, err := core.New(core.Config{Model: machine.Model, ROM: rom})
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	emu.Reset()

	for slot, path := range machine.Packs {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
		if err := emu.LoadOPK(data, slot); err != nil {
			slog.Error(err.Error())
			os.Exit(1)
		}
	}

	monitor.ConsoleReader(emu)
	slog.Info("org2 stopped")
}
