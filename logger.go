/*
Copyright 2018 Iguazio Systems Ltd.

Licensed under the Apache License, Version 2.0 (the "License") with
an addition restriction as set forth herein. You may not use this
file except in compliance with the License. You may obtain a copy of
the License at http://www.apache.org/licenses/LICENSE-2.0.

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing
permissions and limitations under the License.

In addition, you may not use the software for any purposes that are
illegal under applicable law, and the grant of the foregoing license
under the Apache 2.0 license is conditioned upon your compliance with
such restriction.
*/

package tabular

import (
	"strings"

	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/pkg/errors"
)

// DefaultLogLevel is the level used when none is configured
var DefaultLogLevel = "warn"

// NewLogger returns a new logger, level is one of debug, info, warn or error
func NewLogger(level string) (logger.Logger, error) {
	if level == "" {
		level = DefaultLogLevel
	}

	var logLevel nucliozap.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = nucliozap.DebugLevel
	case "info":
		logLevel = nucliozap.InfoLevel
	case "warn":
		logLevel = nucliozap.WarnLevel
	case "error":
		logLevel = nucliozap.ErrorLevel
	default:
		return nil, errors.Errorf("unknown log level - %q", level)
	}

	log, err := nucliozap.NewNuclioZapCmd("tabular", logLevel)
	if err != nil {
		return nil, errors.Wrap(err, "can't create logger")
	}

	return log, nil
}
