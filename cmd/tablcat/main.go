// Command tablcat reads a delimited file and writes it back out, optionally
// converting separator or format along the way.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/shapestone/tabl"
	"github.com/shapestone/tabl/source"
	"github.com/shapestone/tabl/write"
)

func main() {
	sep := flag.String("sep", "", "output separator (default: same as input)")
	html := flag.Bool("html", false, "write HTML instead of delimited text")
	header := flag.Bool("header", true, "treat the first row as a header")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tablcat [-sep=,] [-html] [-header=true] <path>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	res, err := tabl.ReadTable(context.Background(), path, tabl.WithHeader(*header))
	if err != nil {
		log.Fatalf("tablcat: %v", err)
	}
	for _, w := range res.Warnings() {
		fmt.Fprintln(os.Stderr, "tablcat: warning:", w)
	}

	if *html {
		if err := write.HTML(os.Stdout, res.Table, write.HTMLOptions{}); err != nil {
			log.Fatalf("tablcat: %v", err)
		}
		return
	}

	outSep := source.InferSeparator(path)
	if *sep != "" {
		outSep = (*sep)[0]
	}
	opts := write.DelimitedOptions{Separator: outSep, WriteHeader: *header}
	if err := write.Delimited(os.Stdout, res.Table, opts); err != nil {
		log.Fatalf("tablcat: %v", err)
	}
}
