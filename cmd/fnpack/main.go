package main

import "github.com/fitglue/fnpack/cmd/fnpack/cmd"

func main() {
	cmd.Execute()
}
