package main

import (
	"io"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/example/helpdesk/internal/digits"
)

func main() {
	prompt := pflag.StringP("prompt", "p", "", "text printed before each read")
	pflag.Parse()

	if _, err := digits.Run(os.Stdin, os.Stdout, *prompt); err != nil {
		if err == io.EOF {
			os.Exit(1)
		}
		log.Fatalf("digits: %v", err)
	}
}
