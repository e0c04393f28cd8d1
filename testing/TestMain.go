// Package testing prepares the process environment for test binaries that
// import it for side effects. Values already present are left alone.
package testing

import "os"

var testEnv = []struct{ key, value string }{
	{"SERVIFY_TEST_MODE", "1"},
	{"JWT_SECRET", "test-only-secret"},
}

func init() {
	for _, kv := range testEnv {
		if _, ok := os.LookupEnv(kv.key); !ok {
			_ = os.Setenv(kv.key, kv.value)
		}
	}
}
