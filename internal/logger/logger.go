// Copyright © 2022 Alibaba Group Holding Ltd.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger configures the process-wide logrus logger.
package logger

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// Level is one of trace, debug, info, warn, error. Empty means info.
	Level string
	// Debug forces debug level regardless of Level
	Debug bool
	// DisableColor if true will disable outputting colors.
	DisableColor bool
	// LogToFile writes a daily rotated copy of the log under LogDir
	LogToFile bool
	LogDir    string
}

func Init(options Options) error {
	level := options.Level
	if options.Debug {
		level = "debug"
	}
	if err := SetLevel(level); err != nil {
		return err
	}

	logrus.SetReportCaller(true)

	logrus.SetFormatter(&Formatter{
		DisableColor: options.DisableColor,
	})

	if options.LogToFile {
		fh, err := NewFileHook(options.LogDir)
		if err != nil {
			return errors.Errorf("failed to init log file hook: %v", err)
		}
		logrus.AddHook(fh)
	}

	return nil
}

// SetLevel changes the level of the standard logger. It is safe to call while
// other goroutines log, which is what config reload relies on.
func SetLevel(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if logrus.GetLevel() != lvl {
		logrus.SetLevel(lvl)
	}
	return nil
}

// ParseLevel accepts the logrus level names plus "warning", treating an empty
// string as info
func ParseLevel(level string) (logrus.Level, error) {
	level = strings.TrimSpace(strings.ToLower(level))
	if level == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel, errors.Wrapf(err, "invalid log level %q", level)
	}
	return lvl, nil
}
