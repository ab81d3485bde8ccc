// Package pushopt reads the pusher's push-option list from the invoking
// process's environment, in the order git set it.
package pushopt

import (
	"fmt"
	"os"
	"strconv"
)

// FromEnviron reads GIT_PUSH_OPTION_COUNT and GIT_PUSH_OPTION_{i}, returning
// the options in push order. A missing or non-numeric count yields nil.
func FromEnviron() []string {
	count, err := strconv.Atoi(os.Getenv("GIT_PUSH_OPTION_COUNT"))
	if err != nil || count <= 0 {
		return nil
	}
	options := make([]string, 0, count)
	for i := 0; i < count; i++ {
		options = append(options, os.Getenv(fmt.Sprintf("GIT_PUSH_OPTION_%d", i)))
	}
	return options
}
