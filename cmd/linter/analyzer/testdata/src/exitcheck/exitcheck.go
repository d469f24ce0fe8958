package exitcheck

import (
	"log"
	"os"
)

func Resolve() {
	panic("no") // want "panic is forbidden"
}

func Shorten() {
	log.Fatalf("no: %d", 1) // want "log.Fatalf is forbidden outside main function"
}

func Shutdown() {
	os.Exit(1) // want "os.Exit is forbidden outside main function"
}
