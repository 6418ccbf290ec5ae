// Command pdfoverlay places overlay widgets on a PDF from gesture scripts and
// writes the flattened result.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	app := New()

	if err := app.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "pdfoverlay: %v\n", err)
		os.Exit(1)
	}
}
