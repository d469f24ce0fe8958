package exitcheck

import (
	"log"
	"os"
)

func main() {
	log.Fatal("allowed in main")
	os.Exit(0)
}

func init() {
	panic("no") // want "panic is forbidden"
	log.Fatal("no") // want "log.Fatal is forbidden outside main function"
	os.Exit(1) // want "os.Exit is forbidden outside main function"
}
