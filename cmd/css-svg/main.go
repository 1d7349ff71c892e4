package main

import (
	cmd "github.com/rohmanhakim/css-svg/internal/cli"
)

func main() {
	cmd.Execute()
}
