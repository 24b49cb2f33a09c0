package main

import "github.com/MeKo-Tech/scanline/cmd/scanline/cmd"

func main() {
	cmd.Execute()
}
