package main

import "github.com/naka-gawa/osci-stats/cmd"

func main() {
	cmd.Execute()
}
