// Command pinhash prints a bcrypt hash for MANAGER_PIN_HASH or STAFF_PIN_HASH.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gourmet-kitchen/ordersys/internal/auth"
)

func main() {
	pin := flag.String("pin", "", "Numeric PIN, 4 to 12 digits")
	flag.Parse()

	if *pin == "" {
		*pin = os.Getenv("PIN")
	}
	if *pin == "" {
		fmt.Fprintln(os.Stderr, "usage: pinhash -pin 1234")
		os.Exit(2)
	}

	hash, err := auth.HashPIN(*pin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pinhash: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
