// Command fsync mirrors a source directory tree onto a destination tree
// on the local filesystem, overlapping metadata probing, reads and
// writes across worker pools. Grounded on bin/cross-compile.go's CLI
// idiom: stdlib flag for usage/help, log.Fatalf for unrecoverable setup
// errors, positional arguments for the tool's actual parameters.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ncw/fsync/internal/engine"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s SOURCE DEST [READERS [WRITERS [CHUNK_MB]]]\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := engine.DefaultConfig()
	source, dest := args[0], args[1]

	if len(args) >= 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n <= 0 {
			log.Fatalf("invalid READERS %q: must be a positive integer", args[2])
		}
		cfg.Readers = n
	}
	if len(args) >= 4 {
		n, err := strconv.Atoi(args[3])
		if err != nil || n <= 0 {
			log.Fatalf("invalid WRITERS %q: must be a positive integer", args[3])
		}
		cfg.Writers = n
	}
	if len(args) >= 5 {
		n, err := strconv.Atoi(args[4])
		if err != nil || n <= 0 {
			log.Fatalf("invalid CHUNK_MB %q: must be a positive integer", args[4])
		}
		cfg.ChunkSize = int64(n) * 1024 * 1024
	}

	if _, err := os.Lstat(source); err != nil {
		log.Fatalf("cannot stat source %q: %v", source, err)
	}

	eng := engine.New(cfg)
	if err := eng.Run(context.Background(), source, dest); err != nil {
		log.Fatalf("fsync: %v", err)
	}

	eng.Stats().Log()
}
