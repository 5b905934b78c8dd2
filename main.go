package main

import (
	"os"

	"github.com/alstlr0307/interviewmon-front/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
