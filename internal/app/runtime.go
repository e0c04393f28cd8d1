package app

import (
	"os"
	"strconv"
)

// TestModeEnv marks a process started by go test. main returns before
// dialling Postgres, Redis or the trace collector when it is set.
const TestModeEnv = "SERVIFY_TEST_MODE"

// InTestMode reports whether TestModeEnv holds a true boolean value.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}
