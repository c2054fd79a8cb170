package main

import "github.com/mselser95/dex-arb/cmd"

func main() {
	cmd.Execute()
}
