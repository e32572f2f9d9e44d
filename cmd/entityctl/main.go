package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	root, a := newRootCmd()
	err := root.Execute()
	if closeErr := a.close(); closeErr != nil {
		logrus.Warnf("entityctl: close: %v", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
