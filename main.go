package main

import (
	"os"

	"github.com/tkuo-tkuo/LNG-AI/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
