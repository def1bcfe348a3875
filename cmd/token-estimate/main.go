// Command token-estimate prints the estimated token count of a message log
// file. It is an offline operational tool, not part of the bot process.
package main

import (
	"flag"
	"fmt"
	"log"

	"recap-bot/internal/tokens"
)

func main() {
	file := flag.String("file", "", "path to a message log file")
	flag.Parse()

	if *file == "" {
		log.Fatal("missing required -file argument")
	}

	count, err := tokens.EstimateLogFile(*file)
	if err != nil {
		log.Fatalf("Failed to estimate tokens: %v", err)
	}
	fmt.Println(count)
}
