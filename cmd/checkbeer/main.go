// checkbeer — package integrity probe CLI.
package main

import "github.com/eyad-hamdy98/CheckBeer/internal/cli"

func main() {
	cli.Execute()
}
