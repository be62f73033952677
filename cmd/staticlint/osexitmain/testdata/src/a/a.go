package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("starting")
	defer fmt.Println("never runs")
	go func() {
		os.Exit(3) // function literals are exempt
	}()
	os.Exit(1) // want "do not call os.Exit directly in main"
}

func helper() {
	os.Exit(2) // only main is checked
}
