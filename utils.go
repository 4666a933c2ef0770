/* utils.go
 * Helpers for reading the command line flags of main
 * Authors: Zachary Bower
 */

package main

import (
	"fmt"
	"strings"
)

// convertStrToBool reads the true/false values taken by the -test and -web flags
// Preconditions: Receives the raw flag value, case and surrounding spaces are ignored
// Postconditions: Returns the value, or an error quoting the rejected input
func convertStrToBool(str string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean string %q, expected true or false", str)
}
