package main

import (
	"os"

	"github.com/ShaikTechV/interview-quiz-platform/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
