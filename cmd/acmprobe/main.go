/*
   Copyright Marko Kreen and contributors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Command acmprobe prints diagnostic information about an ACM file: its
// stream parameters, estimated bitrate, and duration. It never decodes
// PCM to disk (no WAV writing, no channel remapping) -- that remains
// the reference CLI's job, out of scope here.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/markokr/libacm"
)

type infoReport struct {
	Channels    int    `yaml:"channels"`
	Rate        int    `yaml:"rate"`
	Level       int    `yaml:"level"`
	Cols        int    `yaml:"cols"`
	Rows        int    `yaml:"rows"`
	TotalValues int64  `yaml:"total_values"`
	Bitrate     int    `yaml:"bitrate"`
	Duration    string `yaml:"duration"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("acmprobe", pflag.ContinueOnError)

	allowWAVC := flags.Bool("wavc", false, "accept WAVC-wrapped headers")
	dumpYAML := flags.Bool("dump-info", false, "print stream info as YAML instead of a summary line")
	verbose := flags.BoolP("verbose", "v", false, "log open diagnostics")

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}

		return 2
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	if flags.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: acmprobe [flags] <file.acm>")

		return 2
	}

	path := flags.Arg(0)

	var opts []acm.Option
	if *allowWAVC {
		opts = append(opts, acm.WithWAVC())
	}

	logger.Debug("opening", "path", path)

	dec, err := acm.OpenFile(path, opts...)
	if err != nil {
		logger.Error("open failed", "path", path, "err", err)

		return 1
	}
	defer dec.Close()

	info := dec.Info()
	report := infoReport{
		Channels:    info.Channels,
		Rate:        info.Rate,
		Level:       info.Level,
		Cols:        info.Cols,
		Rows:        info.Rows,
		TotalValues: info.TotalValues,
		Bitrate:     dec.Bitrate(),
		Duration:    dec.TimeTotal().String(),
	}

	if *dumpYAML {
		out, err := yaml.Marshal(report)
		if err != nil {
			logger.Error("marshal failed", "err", err)

			return 1
		}

		os.Stdout.Write(out)

		return 0
	}

	fmt.Printf("%s: %dch %dHz level=%d cols=%d rows=%d total=%d bitrate=%d duration=%s\n",
		path, report.Channels, report.Rate, report.Level, report.Cols, report.Rows,
		report.TotalValues, report.Bitrate, report.Duration)

	return 0
}
