// Command rotate inspects question rotation offline: which questions a learner
// receives on each attempt of a test definition file.
//
// Usage:
//
//	rotate plan exam.xml
//	rotate select exam.yaml --attempt 3 --user learner-1
//	rotate preview exam.xml --attempts 6 --user learner-1 --resource course-9
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
