// Command annrecall measures the recall of an approximate nearest-neighbor
// index against exact ground truth.
//
//	annrecall eval --dataset vectors.txt --recall-levels 1,10,100
//	annrecall eval --dataset random:100000:128 --index hnsw --effort 200 --output json
//	annrecall import --dataset random:100000:128 --to badger://./data
//	annrecall eval --dataset badger://./data --metrics-addr :2112
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
