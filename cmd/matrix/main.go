package main

import "github.com/OpenTraceLab/OpenTraceMatrix/cmd/matrix/cmd"

func main() {
	cmd.Execute()
}
