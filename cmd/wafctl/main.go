// Command wafctl runs values through the WAF pipeline from the command line,
// lists incidents recorded in the threat log and runs a validating reverse
// proxy.
//
//	wafctl check --mode email 'user@example.com'
//	wafctl check --sanitize "Tom & Jerry" --mode passthrough
//	wafctl reflect '<b>hi</b>'
//	wafctl incidents --limit 5
//	wafctl health
//	wafctl serve --upstream http://127.0.0.1:3000 --listen :8080
//
// Configuration is read from WAF_* environment variables and .env.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if errors.Is(err, errBlocked) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "wafctl:", err)
		os.Exit(2)
	}
}
