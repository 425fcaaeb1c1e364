package commands

import "go.uber.org/zap"

// logger is swapped for a real development logger when --verbose is set;
// by default it is a no-op so ordinary CLI runs stay quiet.
var logger = zap.NewNop()

// initLogger builds the package logger for this invocation. Called from the
// root command's PersistentPreRun once flags are parsed.
func initLogger(verbose bool) {
	if !verbose {
		logger = zap.NewNop()
		return
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		logger = zap.NewNop()
		return
	}
	logger = l
}
